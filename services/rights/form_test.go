package rights

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFreezeForm(t *testing.T) {
	now := time.Date(2024, 3, 31, 23, 30, 0, 0, time.UTC)
	form := NewFreezeForm(now, "https://img.example/a.png")

	assert.Equal(t, "2024-04-01", form.ExpiryDate)
	assert.Equal(t, "23:30", form.ExpiryTime)
	assert.False(t, form.IsExclusive)
	assert.Equal(t, "1", form.MaxISupply)
	assert.Equal(t, "https://img.example/a.png", form.ImageURL)
	assert.False(t, form.ReadOnly)
}

func TestFreezeFormFromMetadata(t *testing.T) {
	expiry := time.Date(2030, 1, 2, 3, 4, 59, 0, time.UTC)

	tests := []struct {
		name     string
		meta     *Metadata
		wantDate string
		wantTime string
	}{
		{
			name:     "expiry preferred",
			meta:     &Metadata{Expiry: expiry.Unix(), EndTime: 1, IsExclusive: true, MaxISupply: 1},
			wantDate: "2030-01-02",
			wantTime: "03:04",
		},
		{
			name:     "falls back to end time",
			meta:     &Metadata{EndTime: expiry.Unix(), MaxISupply: 5, ImageURL: "https:||img.example|a.png"},
			wantDate: "2030-01-02",
			wantTime: "03:04",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := FreezeFormFromMetadata(tt.meta)
			require.NotNil(t, form)
			assert.Equal(t, tt.wantDate, form.ExpiryDate)
			assert.Equal(t, tt.wantTime, form.ExpiryTime)
			assert.True(t, form.ReadOnly)
		})
	}

	form := FreezeFormFromMetadata(tests[1].meta)
	assert.Equal(t, "https://img.example/a.png", form.ImageURL)
	assert.Nil(t, FreezeFormFromMetadata(nil))
}

func TestFreezeForm_Params(t *testing.T) {
	form := &FreezeForm{
		ExpiryDate:  "2030-01-01",
		ExpiryTime:  "00:00",
		IsExclusive: false,
		MaxISupply:  "25",
		Purpose:     "print",
		ImageURL:    "https://img.example/a.png",
	}

	params, err := form.Params()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC).Unix(), params.Expiry)
	assert.Equal(t, uint64(25), params.MaxISupply)
	assert.Equal(t, "https:||img.example|a.png", params.ImageURL)
	assert.Equal(t, "none", params.TermsURL)

	form.IsExclusive = true
	form.MaxISupply = "not a number"
	params, err = form.Params()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), params.MaxISupply, "exclusive freeze always has supply 1")

	form.IsExclusive = false
	_, err = form.Params()
	assert.Error(t, err)

	form.ExpiryDate = "01/01/2030"
	_, err = form.Params()
	assert.Error(t, err)
}
