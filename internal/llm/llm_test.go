package llm

import (
	"strings"
	"testing"

	"jobfetch/internal/config"
)

func TestParseJSONResultWholeString(t *testing.T) {
	res, err := parseJSONResult(`{"title":" Engineer ","company":"Acme","description":"Build things."}`)
	if err != nil {
		t.Fatalf("parseJSONResult: %v", err)
	}
	if res.Title != "Engineer" || res.Company != "Acme" || res.Description != "Build things." {
		t.Errorf("res = %+v", res)
	}
}

func TestParseJSONResultEmbeddedBlock(t *testing.T) {
	content := "Here is the posting:\n```json\n{\"title\":\"Engineer\",\"company\":\"Acme\",\"description\":\"Build.\"}\n```\nDone."
	res, err := parseJSONResult(content)
	if err != nil {
		t.Fatalf("parseJSONResult: %v", err)
	}
	if res.Title != "Engineer" {
		t.Errorf("title = %q", res.Title)
	}
}

func TestParseJSONResultNoObject(t *testing.T) {
	if _, err := parseJSONResult("sorry, I cannot help with that"); err == nil {
		t.Errorf("expected error for non-JSON response")
	}
}

func TestTruncateCapsContent(t *testing.T) {
	long := strings.Repeat("x", MaxContentChars+500)
	if got := truncate(long); len(got) != MaxContentChars {
		t.Errorf("len = %d, want %d", len(got), MaxContentChars)
	}
	short := "short"
	if got := truncate(short); got != short {
		t.Errorf("short content altered: %q", got)
	}
}

func TestNewClientFromConfig(t *testing.T) {
	cfg := &config.Config{}
	cfg.LLM.DefaultProvider = "openai"
	if _, _, _, err := NewClientFromConfig(cfg); err == nil {
		t.Errorf("expected error for unconfigured provider")
	}

	cfg.LLM.OpenAI.APIKey = "sk-test"
	cfg.LLM.OpenAI.Model = "gpt-4o-mini"
	client, provider, modelName, err := NewClientFromConfig(cfg)
	if err != nil {
		t.Fatalf("NewClientFromConfig: %v", err)
	}
	if client == nil || provider != ProviderOpenAI || modelName != "gpt-4o-mini" {
		t.Errorf("got %v/%v/%q", client, provider, modelName)
	}

	cfg.LLM.DefaultProvider = "nonsense"
	if _, _, _, err := NewClientFromConfig(cfg); err == nil {
		t.Errorf("expected error for unknown provider")
	}
}
