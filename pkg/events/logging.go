package events

import (
	"github.com/mandelsoft/logging"
)

var REALM = logging.DefineRealm("anchors/events", "anchor event dispatching")

var log = logging.DynamicLogger(logging.DefaultContext(), REALM)
