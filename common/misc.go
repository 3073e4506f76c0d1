package common

import (
	"os"
	"path/filepath"
	"runtime/debug"

	"github.com/davecgh/go-spew/spew"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// PanicDir is where Recover writes its dumps. Empty disables the files
var PanicDir string

// Recover must be deferred at the top of every event handler. A panic is logged and
// dumped to PanicDir but never takes the process down
func Recover(where string) {
	err := recover()
	if err == nil {
		return
	}
	trace := spew.Sdump(err) + "\n" + string(debug.Stack())
	log.WithFields(log.Fields{
		"handler": where,
	}).Error(trace)

	if PanicDir == "" {
		return
	}
	if mkErr := os.MkdirAll(PanicDir, 0755); mkErr != nil {
		log.Error(mkErr)
		return
	}
	name := filepath.Join(PanicDir, "panic-"+uuid.NewString()+".txt")
	if wErr := os.WriteFile(name, []byte(trace), 0644); wErr != nil {
		log.Error(wErr)
	}
}
