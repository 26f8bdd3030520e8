package mmbverify

import (
	"context"
	"fmt"
	"os"

	"github.com/wippyai/mmbverify/mmb"
	"github.com/wippyai/mmbverify/verifier"
)

// Check opens data as a certificate and verifies every declaration. The
// returned outline holds what was committed, also on failure.
func Check(ctx context.Context, data []byte, opts verifier.Options) (*verifier.Outline, error) {
	f, err := mmb.Open(data)
	if err != nil {
		return nil, err
	}
	v := verifier.New(f, opts)
	return v.Outline(), v.Verify(ctx)
}

// CheckFile reads path and verifies it with Check.
func CheckFile(ctx context.Context, path string, opts verifier.Options) (*verifier.Outline, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return Check(ctx, data, opts)
}
