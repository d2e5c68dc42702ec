package ai

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"jobfetch/internal/extract"
	"jobfetch/internal/llm"
	"jobfetch/internal/model"
)

type fakeClient struct {
	res llm.CoerceResult
	err error
}

func (f *fakeClient) CoerceJobPosting(_ context.Context, _ llm.CoerceRequest) (llm.CoerceResult, error) {
	return f.res, f.err
}

func factoryFor(c llm.Client, err error) func() (llm.Client, llm.Provider, string, error) {
	return func() (llm.Client, llm.Provider, string, error) {
		return c, llm.ProviderOpenAI, "gpt-test", err
	}
}

type fakeRenderer struct {
	page      string
	err       error
	available bool
	calls     int
}

func (f *fakeRenderer) Available() bool { return f.available }

func (f *fakeRenderer) FetchRendered(_ context.Context, _ string) (string, error) {
	f.calls++
	return f.page, f.err
}

func validResult() llm.CoerceResult {
	return llm.CoerceResult{
		Title:       "Engineer",
		Company:     "Acme",
		Description: strings.Repeat("Responsibilities and qualifications. ", 5),
	}
}

func TestCoerceSuccess(t *testing.T) {
	svc := NewService(factoryFor(&fakeClient{res: validResult()}, nil), nil, nil, time.Second)

	posting, err := svc.Coerce(context.Background(), "https://example.com/job", "raw page text")
	if err != nil {
		t.Fatalf("Coerce: %v", err)
	}
	if posting.ExtractionMethod != model.MethodAIExtraction {
		t.Errorf("method = %q", posting.ExtractionMethod)
	}
	if posting.SourceURL != "https://example.com/job" {
		t.Errorf("sourceURL = %q", posting.SourceURL)
	}
}

func TestCoerceRejectsIncompleteResult(t *testing.T) {
	cases := []llm.CoerceResult{
		{Company: "Acme", Description: strings.Repeat("text ", 30)},
		{Title: "Engineer", Description: strings.Repeat("text ", 30)},
		{Title: "Engineer", Company: "Acme", Description: "too short"},
	}

	for i, res := range cases {
		svc := NewService(factoryFor(&fakeClient{res: res}, nil), nil, nil, time.Second)
		_, err := svc.Coerce(context.Background(), "https://example.com/job", "raw")
		if !extract.IsKind(err, extract.KindAllTiersExhausted) {
			t.Errorf("case %d: err = %v, want KindAllTiersExhausted", i, err)
		}
	}
}

func TestCoerceNoProviderConfigured(t *testing.T) {
	svc := NewService(factoryFor(nil, errors.New("no provider")), nil, nil, time.Second)

	_, err := svc.Coerce(context.Background(), "https://example.com/job", "raw")
	if !extract.IsKind(err, extract.KindAllTiersExhausted) {
		t.Errorf("err = %v, want KindAllTiersExhausted", err)
	}
	if !strings.Contains(err.Error(), "manually") {
		t.Errorf("error should advise manual entry: %v", err)
	}
}

func TestExtractFromURLUsesRenderer(t *testing.T) {
	renderer := &fakeRenderer{page: "<html>rendered posting</html>", available: true}
	svc := NewService(factoryFor(&fakeClient{res: validResult()}, nil), renderer, nil, time.Second)

	posting, err := svc.ExtractFromURL(context.Background(), "https://example.com/job")
	if err != nil {
		t.Fatalf("ExtractFromURL: %v", err)
	}
	if renderer.calls != 1 {
		t.Errorf("renderer calls = %d, want 1", renderer.calls)
	}
	if posting.Title != "Engineer" {
		t.Errorf("title = %q", posting.Title)
	}
}

func TestExtractFromURLWithoutRenderer(t *testing.T) {
	svc := NewService(factoryFor(&fakeClient{res: validResult()}, nil), &fakeRenderer{available: false}, nil, time.Second)

	_, err := svc.ExtractFromURL(context.Background(), "https://example.com/job")
	if !extract.IsKind(err, extract.KindAllTiersExhausted) {
		t.Errorf("err = %v, want KindAllTiersExhausted", err)
	}
}
