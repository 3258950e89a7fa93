package healthz

import (
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/mandelsoft/logging"
)

var REALM = logging.DefineRealm("anchors/healthz", "liveness monitoring")

var log = logging.DynamicLogger(logging.DefaultContext(), REALM)

type check struct {
	last    time.Time
	timeout time.Duration
}

// Checks is a set of liveness checks. Every check must be ticked
// at least once every three periods to be considered healthy.
type Checks struct {
	lock   sync.Mutex
	checks map[string]*check
}

func New() *Checks {
	return &Checks{checks: map[string]*check{}}
}

var checks = New()

// Default returns the process wide check set.
func Default() *Checks {
	return checks
}

func (c *Checks) Start(key string, period time.Duration) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.checks[key] = &check{time.Now(), 3 * period}
}

func (c *Checks) Tick(key string) {
	c.lock.Lock()
	defer c.lock.Unlock()

	e := c.checks[key]
	if e == nil {
		panic(fmt.Sprintf("check with key %q not configured", key))
	}
	e.last = time.Now()
}

func (c *Checks) End(key string) {
	c.lock.Lock()
	defer c.lock.Unlock()
	delete(c.checks, key)
}

func (c *Checks) IsHealthy() bool {
	ok, _ := c.HealthInfo()
	return ok
}

// HealthInfo reports the health state together with a line
// per check describing the last tick.
func (c *Checks) HealthInfo() (bool, string) {
	c.lock.Lock()
	defer c.lock.Unlock()

	keys := make([]string, 0, len(c.checks))
	for k := range c.checks {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	healthy := true
	var info strings.Builder
	now := time.Now()
	for _, key := range keys {
		e := c.checks[key]
		limit := now.Add(-e.timeout)
		state := "ok"
		if e.last.Before(limit) {
			log.Warn("outdated health check {{key}}", "key", key, "delay", limit.Sub(e.last).String())
			state = "outdated"
			healthy = false
		}
		fmt.Fprintf(&info, "%s: %s (%s)\n", key, e.last.Format(time.RFC3339), state)
	}
	return healthy, info.String()
}

func Start(key string, period time.Duration) {
	checks.Start(key, period)
}

func Tick(key string) {
	checks.Tick(key)
}

func End(key string) {
	checks.End(key)
}

func IsHealthy() bool {
	return checks.IsHealthy()
}

func HealthInfo() (bool, string) {
	return checks.HealthInfo()
}
