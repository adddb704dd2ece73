package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"latex-cleaner/internal/logger"
	"latex-cleaner/internal/types"
)

func TestNewConfigManager(t *testing.T) {
	t.Run("with custom path", func(t *testing.T) {
		customPath := "/tmp/test-config.json"
		cm, err := NewConfigManager(customPath)
		if err != nil {
			t.Fatalf("NewConfigManager failed: %v", err)
		}
		if cm.GetConfigPath() != customPath {
			t.Errorf("expected config path %s, got %s", customPath, cm.GetConfigPath())
		}
	})

	t.Run("with empty path uses default", func(t *testing.T) {
		cm, err := NewConfigManager("")
		if err != nil {
			t.Fatalf("NewConfigManager failed: %v", err)
		}
		if filepath.Base(cm.GetConfigPath()) != DefaultConfigFileName {
			t.Errorf("expected default file name, got %s", cm.GetConfigPath())
		}
	})
}

func TestConfigManager_LoadSave(t *testing.T) {
	t.Setenv(EnvDefines, "")
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "test-config.json")

	t.Run("Load with non-existent file uses defaults", func(t *testing.T) {
		cm, err := NewConfigManager(configPath)
		if err != nil {
			t.Fatalf("NewConfigManager failed: %v", err)
		}
		if err := cm.Load(); err != nil {
			t.Fatalf("Load failed: %v", err)
		}

		config := cm.GetConfig()
		if config.LogLevel != DefaultLogLevel {
			t.Errorf("expected default log level %s, got %s", DefaultLogLevel, config.LogLevel)
		}
		if !config.IsStrict() {
			t.Error("expected strict mode by default")
		}
		if len(config.ImageExtensions) != len(DefaultImageExtensions) {
			t.Errorf("expected default image extensions, got %v", config.ImageExtensions)
		}
	})

	t.Run("Save and Load roundtrip", func(t *testing.T) {
		cm, err := NewConfigManager(configPath)
		if err != nil {
			t.Fatalf("NewConfigManager failed: %v", err)
		}
		lenient := false
		cm.SetConfig(&types.Config{
			Defines:     []string{"DRAFT"},
			Strict:      &lenient,
			ExtraMacros: map[string]types.MacroSpec{"\\R": {Body: "\\mathbb{R}"}},
		})
		if err := cm.Save(); err != nil {
			t.Fatalf("Save failed: %v", err)
		}

		cm2, _ := NewConfigManager(configPath)
		if err := cm2.Load(); err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		config := cm2.GetConfig()
		if len(config.Defines) != 1 || config.Defines[0] != "DRAFT" {
			t.Errorf("expected defines [DRAFT], got %v", config.Defines)
		}
		if config.IsStrict() {
			t.Error("expected lenient mode after reload")
		}
		if config.ExtraMacros["\\R"].Body != "\\mathbb{R}" {
			t.Errorf("unexpected extra macro: %+v", config.ExtraMacros["\\R"])
		}
		if config.LogLevel != DefaultLogLevel {
			t.Errorf("expected default log level to be re-applied, got %q", config.LogLevel)
		}
	})

	t.Run("Load with invalid JSON uses defaults", func(t *testing.T) {
		invalidPath := filepath.Join(tmpDir, "invalid.json")
		if err := os.WriteFile(invalidPath, []byte("{not json"), 0600); err != nil {
			t.Fatalf("failed to write file: %v", err)
		}
		cm, _ := NewConfigManager(invalidPath)
		if err := cm.Load(); err != nil {
			t.Fatalf("Load should not fail on invalid JSON: %v", err)
		}
		if len(cm.GetDefines()) != 0 {
			t.Errorf("expected no defines, got %v", cm.GetDefines())
		}
	})

	t.Run("Saved file is valid JSON", func(t *testing.T) {
		data, err := os.ReadFile(configPath)
		if err != nil {
			t.Fatalf("failed to read config: %v", err)
		}
		var raw map[string]interface{}
		if err := json.Unmarshal(data, &raw); err != nil {
			t.Errorf("saved config is not valid JSON: %v", err)
		}
	})
}

func TestConfigManager_YAML(t *testing.T) {
	t.Setenv(EnvDefines, "")
	path := filepath.Join(t.TempDir(), "cleaner.yaml")
	content := `defines: [ARXIV, FINAL]
log_level: debug
extra_macros:
  \vect:
    arity: 1
    body: \mathbf{#1}
wordcount:
  count_appendix: true
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	cm, _ := NewConfigManager(path)
	if err := cm.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	config := cm.GetConfig()
	if len(config.Defines) != 2 {
		t.Errorf("expected 2 defines, got %v", config.Defines)
	}
	if config.LogLevel != "debug" {
		t.Errorf("expected log level debug, got %s", config.LogLevel)
	}
	if spec := config.ExtraMacros["\\vect"]; spec.Arity != 1 || spec.Body != "\\mathbf{#1}" {
		t.Errorf("unexpected macro spec: %+v", spec)
	}
	if !config.WordCount.CountAppendix {
		t.Error("expected count_appendix to be set")
	}
}

func TestConfigManager_DefinesFromEnv(t *testing.T) {
	t.Setenv(EnvDefines, "ARXIV, ,CAMERA")

	cm, _ := NewConfigManager(filepath.Join(t.TempDir(), "absent.json"))
	if err := cm.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	defines := cm.GetDefines()
	if len(defines) != 2 || defines[0] != "ARXIV" || defines[1] != "CAMERA" {
		t.Errorf("expected [ARXIV CAMERA], got %v", defines)
	}
}

func TestLoadAndInitLogger(t *testing.T) {
	t.Setenv(EnvDefines, "")
	path := filepath.Join(t.TempDir(), "cleaner.json")
	content := `{"log_level": "verbose", "image_extensions": [".png"]}`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	cm, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if exts := cm.GetImageExtensions(); len(exts) != 1 || exts[0] != ".png" {
		t.Errorf("expected [.png], got %v", exts)
	}

	err = cm.InitLogger("")
	if types.CodeOf(err) != types.ErrInvalidInput {
		t.Errorf("expected INVALID_INPUT for unknown configured level, got %v", err)
	}

	logPath := filepath.Join(t.TempDir(), "run.log")
	cm.GetConfig().LogFile = logPath
	if err := cm.InitLogger("debug"); err != nil {
		t.Fatalf("InitLogger failed: %v", err)
	}
	logger.Info("expansion started")
	if err := logger.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("failed to read log: %v", err)
	}
	if !strings.Contains(string(data), "expansion started") {
		t.Errorf("expected log entry in %s, got %q", logPath, data)
	}
}

func TestGetImageExtensionsDefault(t *testing.T) {
	cm, _ := NewConfigManager(filepath.Join(t.TempDir(), "absent.json"))
	cm.SetConfig(&types.Config{})
	if exts := cm.GetImageExtensions(); len(exts) != len(DefaultImageExtensions) {
		t.Errorf("expected default extensions, got %v", exts)
	}
}
