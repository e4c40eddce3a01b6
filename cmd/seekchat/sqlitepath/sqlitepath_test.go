package sqlitepath

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("ResolveSQLitePath", func() {
	var (
		origHome string
		origXDG  string
		origCwd  string
	)

	BeforeEach(func() {
		origHome = os.Getenv("HOME")
		origXDG = os.Getenv("XDG_DATA_HOME")
		var err error
		origCwd, err = os.Getwd()
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		Expect(os.Setenv("HOME", origHome)).To(Succeed())
		Expect(os.Setenv("XDG_DATA_HOME", origXDG)).To(Succeed())
		Expect(os.Chdir(origCwd)).To(Succeed())
	})

	tempDir := func(pattern string) string {
		dir, err := os.MkdirTemp("", pattern)
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(func() {
			_ = os.RemoveAll(dir)
		})
		return dir
	}

	It("prefers the configured path", func() {
		path, err := ResolveSQLitePath("/tmp/custom.sqlite", "")
		Expect(err).NotTo(HaveOccurred())
		Expect(path).To(Equal("/tmp/custom.sqlite"))
	})

	It("places the database in the config dir override", func() {
		configDir := tempDir("seekchat-config-*")

		path, err := ResolveSQLitePath("", configDir)
		Expect(err).NotTo(HaveOccurred())

		abs, err := filepath.Abs(configDir)
		Expect(err).NotTo(HaveOccurred())
		Expect(path).To(Equal(filepath.Join(abs, DefaultFileName)))
	})

	It("reuses an existing XDG data home database", func() {
		xdgHome := tempDir("seekchat-xdg-*")
		dbPath := filepath.Join(xdgHome, "seekchat", DefaultFileName)
		Expect(os.MkdirAll(filepath.Dir(dbPath), 0o755)).To(Succeed())
		Expect(os.WriteFile(dbPath, []byte("test"), 0o644)).To(Succeed())
		Expect(os.Setenv("XDG_DATA_HOME", xdgHome)).To(Succeed())

		path, err := ResolveSQLitePath("", "")
		Expect(err).NotTo(HaveOccurred())
		Expect(path).To(Equal(dbPath))
	})

	It("creates ~/.seekchat/ when nothing else is found", func() {
		homeDir := tempDir("seekchat-home-*")
		cwd := tempDir("seekchat-cwd-*")

		Expect(os.Setenv("HOME", homeDir)).To(Succeed())
		Expect(os.Setenv("XDG_DATA_HOME", "")).To(Succeed())
		Expect(os.Chdir(cwd)).To(Succeed())

		path, err := ResolveSQLitePath("", "")
		Expect(err).NotTo(HaveOccurred())
		Expect(path).To(Equal(filepath.Join(homeDir, ".seekchat", DefaultFileName)))
		Expect(filepath.Join(homeDir, ".seekchat")).To(BeADirectory())
	})
})
