package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/docoi/Smart-S/internal/domain"
)

func TestFatalStatus(t *testing.T) {
	tests := []struct {
		status   string
		expected bool
	}{
		{domain.StatusCompleted, false},
		{domain.StatusFailedNoLinkedIn, false},
		{domain.StatusFailedNoContacts, false},
		{domain.StatusFailed, true},
	}

	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			assert.Equal(t, tt.expected, fatalStatus(tt.status))
		})
	}
}
