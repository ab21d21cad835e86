package uploader

import "testing"

func TestClassifyStatusCode(t *testing.T) {
	cases := []struct {
		code       int
		needsRetry bool
		errIsNil   bool
	}{
		{200, false, true},
		{204, false, true},
		{401, false, false},
		{403, false, false},
		{404, false, false},
		{408, true, false},
		{429, true, false},
		{500, true, false},
		{503, true, false},
		{301, false, false},
	}

	for _, c := range cases {
		got := classifyStatusCode(c.code)
		if got.NeedsRetry != c.needsRetry {
			t.Errorf("classifyStatusCode(%d).NeedsRetry = %v, want %v", c.code, got.NeedsRetry, c.needsRetry)
		}
		if (got.Err == nil) != c.errIsNil {
			t.Errorf("classifyStatusCode(%d).Err = %v, want nil=%v", c.code, got.Err, c.errIsNil)
		}
	}
}

func TestStatusOk(t *testing.T) {
	if !(Status{Err: nil}).Ok() {
		t.Error("Status with nil Err should be Ok")
	}
	if (Status{Err: Unauthorized{}}).Ok() {
		t.Error("Status with non-nil Err should not be Ok")
	}
}

func TestUnauthorizedNotRetried(t *testing.T) {
	got := classifyStatusCode(401)
	if got.NeedsRetry {
		t.Error("401 must not be retried: resending the same token fails identically")
	}
}
