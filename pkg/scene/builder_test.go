package scene_test

import (
	"context"
	"time"

	. "github.com/mandelsoft/goutils/testutils"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/mandelsoft/spaceanchors/pkg/ctxutil"
	"github.com/mandelsoft/spaceanchors/pkg/native"
	"github.com/mandelsoft/spaceanchors/pkg/scene"
	"github.com/mandelsoft/spaceanchors/pkg/session"
	"github.com/mandelsoft/spaceanchors/pkg/simulator"
	"github.com/mandelsoft/spaceanchors/pkg/space"
)

type population struct {
	scene *scene.Scene
	err   error
}

var _ = Describe("scene builder", func() {
	var ctx context.Context
	var rt *simulator.Runtime
	var sess *session.Session
	var results chan population

	start := func(opts simulator.Options) {
		rt = Must(simulator.New(opts))
		sess = session.New(rt, native.NewStaticTracking(space.IdentityTransform), time.Millisecond)
		ready, _ := Must2(sess.Start(ctx))
		MustBeSuccessful(ready.Wait())
	}

	builder := func(mode scene.CaptureMode) *scene.Builder {
		b := scene.NewBuilder(sess.Manager(), sess.Bus(), scene.Options{Capture: mode}, func(s *scene.Scene, err error) {
			results <- population{s, err}
		})
		DeferCleanup(b.Close)
		return b
	}

	BeforeEach(func() {
		ctx = ctxutil.TimeoutContext(context.Background(), 10*time.Second)
		results = make(chan population, 10)
	})

	AfterEach(func() {
		ctxutil.Cancel(ctx)
		sess.Wait()
		sess.Close()
		rt.Close()
	})

	It("populates a captured scene", func() {
		start(simulator.Options{Fixture: simulator.DefaultFixture(), Captured: true})
		b := builder(scene.CaptureNever)
		Expect(b.Populate()).To(BeTrue())

		var p population
		Eventually(results).Should(Receive(&p))
		Expect(p.err).To(Succeed())
		s := p.scene
		Expect(b.Scene()).To(BeIdenticalTo(s))

		Expect(s.Room.IsValid()).To(BeTrue())
		Expect(s.Elements).To(HaveLen(7))
		Expect(s.Floor().HasLabel("FLOOR")).To(BeTrue())
		Expect(s.Floor().Plane).NotTo(BeNil())
		Expect(s.Ceiling().HasLabel("CEILING")).To(BeTrue())
		Expect(s.Walls()).To(HaveLen(4))
		Expect(s.WithLabel("WALL_FACE")).To(HaveLen(4))

		tables := s.WithLabel("TABLE")
		Expect(tables).To(HaveLen(1))
		Expect(tables[0].Volume).NotTo(BeNil())
		Expect(tables[0].Plane).NotTo(BeNil())
	})

	It("reports missing scenes", func() {
		start(simulator.Options{Fixture: simulator.DefaultFixture()})
		b := builder(scene.CaptureNever)
		b.Populate()

		var p population
		Eventually(results).Should(Receive(&p))
		Expect(p.err).To(MatchError(scene.ErrNoScene))
		Expect(b.Scene()).To(BeNil())
	})

	It("captures missing scenes once", func() {
		start(simulator.Options{Fixture: simulator.DefaultFixture()})
		b := builder(scene.CaptureOnce)
		b.Populate()

		var p population
		Eventually(results).Should(Receive(&p))
		Expect(p.err).To(Succeed())
		Expect(p.scene.Walls()).To(HaveLen(4))
		Expect(rt.Spaces()).To(Equal(8))

		b.Clear()
		Expect(b.Scene()).To(BeNil())
		b.Populate()
		Eventually(results).Should(Receive(&p))
		Expect(p.err).To(Succeed())
		Expect(rt.Spaces()).To(Equal(8))
	})

	It("reports failed captures", func() {
		start(simulator.Options{Fixture: simulator.DefaultFixture()})
		rt.FailNext(native.EventSceneCaptureComplete, native.FailureOperationFailed)
		b := builder(scene.CaptureOnce)
		b.Populate()

		var p population
		Eventually(results).Should(Receive(&p))
		Expect(p.err).To(HaveOccurred())
		Expect(p.scene).To(BeNil())

		b.Populate()
		Eventually(results).Should(Receive(&p))
		Expect(p.err).To(MatchError(scene.ErrNoScene))
	})

	It("repopulates after external captures", func() {
		start(simulator.Options{Fixture: simulator.DefaultFixture()})
		builder(scene.CaptureNever)
		Must(sess.Manager().AwaitSceneCapture(ctx, "external"))

		var p population
		Eventually(results).Should(Receive(&p))
		Expect(p.err).To(Succeed())
		Expect(p.scene.Elements).To(HaveLen(7))
	})
})

var _ = Describe("capture mode", func() {
	It("parses modes", func() {
		Expect(scene.ParseCaptureMode("")).To(Equal(scene.CaptureNever))
		Expect(scene.ParseCaptureMode("Once")).To(Equal(scene.CaptureOnce))
		Expect(scene.ParseCaptureMode("always")).To(Equal(scene.CaptureAlways))
		_, err := scene.ParseCaptureMode("sometimes")
		Expect(err).To(MatchError(`invalid capture mode "sometimes"`))
		Expect(scene.CaptureAlways.String()).To(Equal("always"))
	})
})
