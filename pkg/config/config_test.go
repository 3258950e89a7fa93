package config_test

import (
	"os"
	"time"

	. "github.com/mandelsoft/goutils/testutils"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/mandelsoft/spaceanchors/pkg/config"
	"github.com/mandelsoft/spaceanchors/pkg/testutils"
	"github.com/mandelsoft/spaceanchors/pkg/utils"
)

func setenv(name, value string) {
	MustBeSuccessful(os.Setenv(name, value))
	DeferCleanup(os.Unsetenv, name)
}

var _ = Describe("config", func() {
	It("parses settings", func() {
		cfg := Must(config.ParseConfig([]byte(`
storage: /data/anchors
latency: 5ms
server: localhost:9000
`)))
		Expect(config.Value(cfg.Storage)).To(Equal("/data/anchors"))
		Expect(config.Value(cfg.Server)).To(Equal("localhost:9000"))
		Expect(cfg.Scene).To(BeNil())
		Expect(Must(cfg.GetLatency())).To(Equal(5 * time.Millisecond))
		Expect(Must(cfg.GetPollPeriod())).To(Equal(config.DefaultPollPeriod))
	})

	It("substitutes environment variables", func() {
		setenv("ANCHORS_TEST_ROOT", "/tmp/test")
		cfg := Must(config.ParseConfig([]byte("storage: ${ANCHORS_TEST_ROOT}/anchors\nscene: ${ANCHORS_TEST_SCENE:-room.yaml}\n")))
		Expect(config.Value(cfg.Storage)).To(Equal("/tmp/test/anchors"))
		Expect(config.Value(cfg.Scene)).To(Equal("room.yaml"))
	})

	It("rejects invalid settings", func() {
		_, err := config.ParseConfig([]byte("storage: [a"))
		Expect(err).To(MatchError(ContainSubstring("invalid config")))

		cfg := &config.Config{Latency: utils.Pointer("soon")}
		_, err = cfg.GetLatency()
		Expect(err).To(MatchError(ContainSubstring(`invalid duration "soon"`)))
	})

	It("merges settings", func() {
		cfg := &config.Config{
			Storage: utils.Pointer("a"),
			Server:  utils.Pointer("host:1"),
		}
		config.MergeConfig(cfg, &config.Config{Storage: utils.Pointer("b"), Latency: utils.Pointer("1s")})
		config.MergeConfig(cfg, nil)
		Expect(config.Value(cfg.Storage)).To(Equal("b"))
		Expect(config.Value(cfg.Server)).To(Equal("host:1"))
		Expect(config.Value(cfg.Latency)).To(Equal("1s"))
	})

	It("provides defaults", func() {
		cfg := &config.Config{Capture: utils.Pointer("")}
		cfg.Default()
		Expect(config.Value(cfg.Storage)).To(Equal(config.DefaultStorage))
		Expect(config.Value(cfg.Server)).To(Equal(config.DefaultServer))
		Expect(config.Value(cfg.LogLevel)).To(Equal(config.DefaultLogLevel))
		Expect(config.Value(cfg.Capture)).To(Equal(config.DefaultCapture))
	})

	Context("files", func() {
		It("reads the config of the working directory", func() {
			fs := testutils.OverlayFileSystem(Must(testutils.SeededFileSystem(map[string]string{
				config.FileName: "storage: local\ncapture: always\n",
			})), true)
			cfg := config.GetConfig(fs)
			Expect(config.Value(cfg.Storage)).To(Equal("local"))
			Expect(config.Value(cfg.Capture)).To(Equal("always"))
			Expect(config.Value(cfg.Server)).To(Equal(config.DefaultServer))
		})

		It("prefers environment settings", func() {
			setenv("ANCHORS_STORAGE", "env")
			fs := Must(testutils.SeededFileSystem(map[string]string{
				config.FileName: "storage: local\n",
			}))
			cfg := config.GetConfig(fs)
			Expect(config.Value(cfg.Storage)).To(Equal("env"))
		})

		It("ignores invalid files", func() {
			fs := Must(testutils.SeededFileSystem(map[string]string{
				config.FileName: "storage: [a",
			}))
			Expect(config.ReadConfig(fs, config.FileName)).To(BeNil())
			Expect(config.ReadConfig(fs, "missing")).To(BeNil())
		})
	})
})
