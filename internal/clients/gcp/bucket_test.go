package gcp

import "testing"

func TestParseURI(t *testing.T) {
	cases := []struct {
		in             string
		bucket, object string
		ok             bool
	}{
		{"gs://archive/data/threads.json", "archive", "data/threads.json", true},
		{"gs://archive", "", "", false},
		{"gs:///threads.json", "", "", false},
		{"https://example.com/threads.json", "", "", false},
	}
	for _, tc := range cases {
		b, o, err := ParseURI(tc.in)
		if (err == nil) != tc.ok {
			t.Fatalf("ParseURI(%q) err=%v, want ok=%v", tc.in, err, tc.ok)
		}
		if tc.ok && (b != tc.bucket || o != tc.object) {
			t.Fatalf("ParseURI(%q)=(%q,%q)", tc.in, b, o)
		}
	}
}
