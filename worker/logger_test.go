package worker_test

import (
	"os"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/fx"
	"go.uber.org/zap/zapcore"

	"github.com/docstream/cdc-worker/worker"
)

var _ = Describe("Logger", func() {
	var components worker.Components

	buildApp := func() *fx.App {
		init := func(c worker.Components) {
			components = c
		}
		opts := append([]fx.Option{}, worker.Modules...)
		opts = append(opts, fx.Invoke(init), fx.NopLogger)
		return fx.New(opts...)
	}

	AfterEach(func() {
		os.Unsetenv("LOG_LEVEL")
		components = worker.Components{}
	})

	It("logs at debug level by default", func() {
		app := buildApp()
		Expect(app.Err()).ToNot(HaveOccurred())
		core := components.Logger.Desugar().Core()
		Expect(core.Enabled(zapcore.DebugLevel)).To(BeTrue())
	})

	It("honors the configured log level", func() {
		os.Setenv("LOG_LEVEL", "warn")
		app := buildApp()
		Expect(app.Err()).ToNot(HaveOccurred())
		core := components.Logger.Desugar().Core()
		Expect(core.Enabled(zapcore.WarnLevel)).To(BeTrue())
		Expect(core.Enabled(zapcore.DebugLevel)).To(BeFalse())
	})

	It("rejects an unparsable log level", func() {
		os.Setenv("LOG_LEVEL", "noisy")
		app := buildApp()
		Expect(app.Err()).To(HaveOccurred())
	})
})
