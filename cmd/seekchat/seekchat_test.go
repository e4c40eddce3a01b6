package seekchatcmder_test

import (
	"bytes"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	seekchatcmder "github.com/papercomputeco/seekchat/cmd/seekchat"
)

var _ = Describe("NewSeekchatCmd", func() {
	It("wires every subcommand", func() {
		cmd := seekchatcmder.NewSeekchatCmd()
		names := []string{}
		for _, sub := range cmd.Commands() {
			names = append(names, sub.Name())
		}
		Expect(names).To(ContainElements("chat", "index", "query", "auth", "config", "version"))
	})

	It("has global --debug and --config-dir flags", func() {
		cmd := seekchatcmder.NewSeekchatCmd()
		Expect(cmd.PersistentFlags().Lookup("debug")).NotTo(BeNil())
		Expect(cmd.PersistentFlags().Lookup("config-dir")).NotTo(BeNil())
	})

	Describe(".env loading", func() {
		var origDir string

		BeforeEach(func() {
			var err error
			origDir, err = os.Getwd()
			Expect(err).NotTo(HaveOccurred())
		})

		AfterEach(func() {
			Expect(os.Chdir(origDir)).To(Succeed())
			Expect(os.Unsetenv("SEEKCHAT_DOTENV_PROBE")).To(Succeed())
		})

		It("loads variables from .env in the working directory", func() {
			dir := GinkgoT().TempDir()
			Expect(os.WriteFile(filepath.Join(dir, ".env"), []byte("SEEKCHAT_DOTENV_PROBE=loaded\n"), 0o600)).To(Succeed())
			Expect(os.Chdir(dir)).To(Succeed())

			cmd := seekchatcmder.NewSeekchatCmd()
			cmd.SetOut(&bytes.Buffer{})
			cmd.SetArgs([]string{"version"})
			Expect(cmd.Execute()).To(Succeed())

			Expect(os.Getenv("SEEKCHAT_DOTENV_PROBE")).To(Equal("loaded"))
		})

		It("runs without a .env file", func() {
			Expect(os.Chdir(GinkgoT().TempDir())).To(Succeed())

			cmd := seekchatcmder.NewSeekchatCmd()
			cmd.SetOut(&bytes.Buffer{})
			cmd.SetArgs([]string{"version"})
			Expect(cmd.Execute()).To(Succeed())
		})
	})
})
