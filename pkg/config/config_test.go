package config

import (
	"os"
	"path/filepath"
	"testing"

	. "github.com/onsi/gomega"
)

func TestLoadDefaults(t *testing.T) {
	RegisterTestingT(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	Expect(err).To(BeNil())
	Expect(cfg).To(Equal(Config{
		Url:        "http://localhost:11434",
		Model:      "deepseek-coder:6.7b",
		MaxRetries: 3,
		LogLevel:   "info",
	}))
}

func TestDefaultsIgnoreEnvironment(t *testing.T) {
	RegisterTestingT(t)
	t.Setenv("OLLAMA_MAX_RETRIES", "zero")

	Expect(Defaults()).To(Equal(Config{
		Url:        "http://localhost:11434",
		Model:      "deepseek-coder:6.7b",
		MaxRetries: 3,
		LogLevel:   "info",
	}))
}

func TestLoadFromEnv(t *testing.T) {
	RegisterTestingT(t)
	t.Setenv("OLLAMA_URL", "http://gpu-box:11434")
	t.Setenv("OLLAMA_MAX_RETRIES", "5")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	Expect(err).To(BeNil())
	Expect(cfg.Url).To(Equal("http://gpu-box:11434"))
	Expect(cfg.MaxRetries).To(Equal(5))
}

func TestLoadFromDotEnv(t *testing.T) {
	RegisterTestingT(t)
	// registers cleanup so the value loaded from the file does not leak into other tests
	t.Setenv("OLLAMA_MODEL", "")
	Expect(os.Unsetenv("OLLAMA_MODEL")).To(Succeed())

	file := filepath.Join(t.TempDir(), ".env")
	Expect(os.WriteFile(file, []byte("OLLAMA_MODEL=llama3.2\n"), 0o600)).To(Succeed())

	cfg, err := Load(file)
	Expect(err).To(BeNil())
	Expect(cfg.Model).To(Equal("llama3.2"))
}

func TestLoadInvalid(t *testing.T) {
	RegisterTestingT(t)
	missing := filepath.Join(t.TempDir(), "missing.env")

	t.Setenv("OLLAMA_MAX_RETRIES", "zero")
	_, err := Load(missing)
	Expect(err).To(HaveOccurred())

	t.Setenv("OLLAMA_MAX_RETRIES", "0")
	_, err = Load(missing)
	Expect(err).To(HaveOccurred())

	t.Setenv("OLLAMA_MAX_RETRIES", "3")
	t.Setenv("OLLAMA_LOG_LEVEL", "chatty")
	_, err = Load(missing)
	Expect(err).To(HaveOccurred())
}
