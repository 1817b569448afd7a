package formwizard

import (
	"io/fs"
	"strings"
	"testing"
)

func TestAssetsFSContainsStylesheet(t *testing.T) {
	data, err := fs.ReadFile(AssetsFS(), "wizard.css")
	if err != nil {
		t.Fatalf("expected stylesheet to be readable: %v", err)
	}
	if !strings.Contains(string(data), ".form-step[hidden]") {
		t.Fatalf("expected stylesheet to hide inactive steps")
	}
}

func TestEmbeddedTemplatesIncludePage(t *testing.T) {
	for _, name := range []string{"page.tmpl", "step.tmpl", "success.tmpl"} {
		if _, err := fs.Stat(EmbeddedTemplates(), name); err != nil {
			t.Fatalf("expected %s: %v", name, err)
		}
	}
}
