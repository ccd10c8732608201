package cmd_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/acumulus-sync/cmd/acumulusctl/cmd"
	"github.com/jhoicas/acumulus-sync/internal/domain"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{domain.NewSyncError("sendInvoice", 1, domain.ErrConfiguration, nil), 2},
		{domain.NewSyncError("sendInvoice", 1, domain.ErrBusiness, nil, "E1"), 3},
		{fmt.Errorf("envolver: %w", domain.ErrTransport), 4},
		{errors.New("otro"), 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, cmd.ExitCode(tt.err), tt.err.Error())
	}
}
