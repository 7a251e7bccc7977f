package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestValidateWindow(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)
	min := 15 * time.Minute

	testCases := []struct {
		name    string
		start   time.Time
		end     time.Time
		wantErr error
	}{
		{
			name:  "valid window",
			start: now.Add(time.Hour),
			end:   now.Add(3 * time.Hour),
		},
		{
			name:  "exactly minimum duration",
			start: now.Add(time.Hour),
			end:   now.Add(time.Hour + min),
		},
		{
			name:    "end equals start",
			start:   now.Add(time.Hour),
			end:     now.Add(time.Hour),
			wantErr: ErrInvalidOrder,
		},
		{
			name:    "end before start",
			start:   now.Add(2 * time.Hour),
			end:     now.Add(time.Hour),
			wantErr: ErrInvalidOrder,
		},
		{
			name:    "below minimum duration",
			start:   now.Add(time.Hour),
			end:     now.Add(time.Hour + min - time.Minute),
			wantErr: ErrTooShort,
		},
		{
			name:    "start in the past",
			start:   now.Add(-time.Hour),
			end:     now.Add(time.Hour),
			wantErr: ErrInThePast,
		},
		{
			name:    "start exactly now fails",
			start:   now,
			end:     now.Add(time.Hour),
			wantErr: ErrInThePast,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateWindow(now, tc.start, tc.end, min)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
