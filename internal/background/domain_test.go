package background

import "testing"

func TestCanonicalDomain(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"https://www.example.com/page", "example.com"},
		{"http://example.com", "example.com"},
		{"example.com", "example.com"},
		{"www.example.com", "example.com"},
		{"  example.com  ", "example.com"},
		{"https://Example.COM", "example.com"},
		{"https://m.example.com", "m.example.com"}, // only www. is stripped
		{"sub.domain.example.com", "sub.domain.example.com"},
		{"", ""},
		{"   ", ""},
		{"https://", ""},
		{"https://www.", ""},
	}
	for _, c := range cases {
		if got := CanonicalDomain(c.in); got != c.want {
			t.Errorf("CanonicalDomain(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestNavigationDomain(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"https://www.example.com/watch?v=1", "example.com"},
		{"http://news.ycombinator.com", "news.ycombinator.com"},
		{"example.com", ""},          // live URLs must carry a scheme
		{"ftp://example.com", ""},    // non-http(s)
		{"chrome://settings", ""},    // browser-internal
		{"about:blank", ""},
		{"focusninja://blocked?url=x", ""},
		{"", ""},
	}
	for _, c := range cases {
		if got := NavigationDomain(c.in); got != c.want {
			t.Errorf("NavigationDomain(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestBlockPageURLRoundTrip(t *testing.T) {
	u := BlockPageURL("https://example.com/a?b=c", "Visit limit (3) reached.", "example.com")
	if !IsBlockPageURL(u) {
		t.Fatalf("block page URL not recognized: %s", u)
	}
	if IsBlockPageURL("https://example.com") {
		t.Fatal("ordinary URL recognized as block page")
	}
}
