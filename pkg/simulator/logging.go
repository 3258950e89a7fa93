package simulator

import (
	"github.com/mandelsoft/logging"
)

var REALM = logging.DefineRealm("anchors/simulator", "simulated xr runtime")

var log = logging.DynamicLogger(logging.DefaultContext(), REALM)
