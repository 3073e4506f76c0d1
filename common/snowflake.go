package common

import (
	"strconv"

	"github.com/pkg/errors"
)

// Used for converting discord snowflakes to epoch time
const DiscordEpoch uint64 = 1420070400000

// Decode returns the unix time in seconds a snowflake was created at.
// The high 42 bits hold milliseconds since epochMs
func Decode(id uint64, epochMs uint64) int64 {
	return int64(((id >> 22) + epochMs) / 1000)
}

// SnowflakeCreated decodes a decimal snowflake string against epochMs
func SnowflakeCreated(id string, epochMs uint64) (int64, error) {
	n, err := strconv.ParseUint(id, 10, 64)
	if err != nil {
		return 0, errors.Wrap(err, "bad snowflake "+id)
	}
	return Decode(n, epochMs), nil
}
