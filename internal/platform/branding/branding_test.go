package branding

import "testing"

func TestAppName(t *testing.T) {
	if AppName == "" {
		t.Fatal("expected AppName to be non-empty")
	}
	if AppName != "Lodestar" {
		t.Fatalf("AppName = %q, want %q", AppName, "Lodestar")
	}
}

func TestDocLinksAreRooted(t *testing.T) {
	links := []string{DocReadme, DocReleaseNotes, DocLicense, DocUpgrade}
	for _, link := range links {
		if link == "" || link[0] != '/' {
			t.Fatalf("expected rooted doc link, got %q", link)
		}
	}
}
