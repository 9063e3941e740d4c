package logger

import "testing"

func TestSanitizeValue(t *testing.T) {
	cases := []struct {
		name string
		key  string
		val  interface{}
		want func(interface{}) bool
	}{
		{
			name: "redacts_token",
			key:  "access_token",
			val:  "abc",
			want: func(v interface{}) bool { return v == "[REDACTED]" },
		},
		{
			name: "hashes_user_id",
			key:  "user_id",
			val:  42,
			want: func(v interface{}) bool {
				s, ok := v.(string)
				return ok && len(s) == len("hash:")+12 && s[:5] == "hash:"
			},
		},
		{
			name: "passes_plain",
			key:  "thread_id",
			val:  "T1",
			want: func(v interface{}) bool { return v == "T1" },
		},
		{
			name: "redacts_jwt_shaped_value",
			key:  "header",
			val:  "eyJhbGciOiJIUzI1NiJ9.eyJzdWIiOiIxMjM0NTY3ODkwIn0.sig",
			want: func(v interface{}) bool { return v == "[REDACTED]" },
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := sanitizeValue(tc.key, tc.val)
			if !tc.want(got) {
				t.Fatalf("sanitizeValue(%q, %v)=%v", tc.key, tc.val, got)
			}
		})
	}
}

func TestHashValueStable(t *testing.T) {
	a := hashValue("7")
	b := hashValue("7")
	if a != b {
		t.Fatalf("hashValue not stable: %q vs %q", a, b)
	}
	if hashValue("") != "" {
		t.Fatalf("hashValue(\"\") should be empty")
	}
}
