package app

import (
	"fmt"
	"sync"

	"github.com/mandelsoft/logging"
	"github.com/mandelsoft/logging/logrusl"
	"github.com/mandelsoft/logging/logrusr"
)

var REALM = logging.DefineRealm("anchors/cli", "anchor command line tool")

var log = logging.DynamicLogger(logging.DefaultContext(), REALM)

var setup sync.Once

// ConfigureLogging sets the log level for all anchor realms.
func ConfigureLogging(level string) error {
	l, err := logging.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level %q", level)
	}
	lctx := logging.DefaultContext()
	setup.Do(func() {
		logcfg := logrusl.Human(true)
		lctx.SetBaseLogger(logrusr.New(logcfg.NewLogrus()))
	})
	lctx.AddRule(logging.NewConditionRule(l, logging.NewRealmPrefix("anchors")))
	return nil
}
