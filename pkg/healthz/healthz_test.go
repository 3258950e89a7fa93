package healthz_test

import (
	"net/http"
	"net/http/httptest"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/mandelsoft/spaceanchors/pkg/healthz"
)

var _ = Describe("health checks", func() {
	var checks *healthz.Checks

	BeforeEach(func() {
		checks = healthz.New()
	})

	It("is healthy without checks", func() {
		ok, info := checks.HealthInfo()
		Expect(ok).To(BeTrue())
		Expect(info).To(BeEmpty())
	})

	It("reports ticked checks", func() {
		checks.Start("poll", time.Minute)
		checks.Tick("poll")
		ok, info := checks.HealthInfo()
		Expect(ok).To(BeTrue())
		Expect(info).To(HavePrefix("poll: "))
		Expect(info).To(HaveSuffix("(ok)\n"))
	})

	It("detects outdated checks", func() {
		checks.Start("poll", time.Millisecond)
		checks.Start("other", time.Minute)
		Eventually(checks.IsHealthy).Should(BeFalse())
		_, info := checks.HealthInfo()
		Expect(info).To(ContainSubstring("poll: "))
		Expect(info).To(ContainSubstring("(outdated)"))

		checks.End("poll")
		Expect(checks.IsHealthy()).To(BeTrue())
	})

	It("rejects ticks for unknown checks", func() {
		Expect(func() { checks.Tick("unknown") }).To(Panic())
	})

	It("serves the health state", func() {
		rec := httptest.NewRecorder()
		checks.Start("poll", time.Minute)
		checks.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring("poll: "))

		checks.Start("stale", time.Nanosecond)
		time.Sleep(time.Millisecond)
		rec = httptest.NewRecorder()
		checks.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		Expect(rec.Code).To(Equal(http.StatusInternalServerError))
	})
})
