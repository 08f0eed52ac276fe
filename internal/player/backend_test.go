package player

import (
	"reflect"
	"testing"

	"tunedeck/internal/core"
)

func TestPlayOptions(t *testing.T) {
	withoutURI := core.Item{Name: "Local file"}
	a, b, c := track("a", 0, false), track("b", 2, false), track("c", 4, false)

	tests := []struct {
		name       string
		req        PlayRequest
		wantURIs   []string
		wantCtx    string
		wantOffset *int
	}{
		{
			name:       "Context mode uses the track position",
			req:        PlayRequest{Track: &b, ContextURI: "spotify:playlist:p1"},
			wantCtx:    "spotify:playlist:p1",
			wantOffset: intPtr(2),
		},
		{
			name:    "Artist context has no offset",
			req:     PlayRequest{Track: &core.Item{}, ContextURI: "spotify:artist:a1"},
			wantCtx: "spotify:artist:a1",
		},
		{
			name:       "Single uri",
			req:        PlayRequest{Track: &a, IsSingleTrack: true, URI: "spotify:episode:e1"},
			wantURIs:   []string{"spotify:episode:e1"},
			wantOffset: intPtr(0),
		},
		{
			name: "Rows without uri shift the offset",
			req: PlayRequest{
				Track:         &c,
				AllTracks:     []core.Item{a, withoutURI, b, withoutURI, c},
				IsSingleTrack: true,
				Position:      4,
			},
			wantURIs:   []string{a.URI, b.URI, c.URI},
			wantOffset: intPtr(2),
		},
		{
			name: "Rows without uri after the position do not count",
			req: PlayRequest{
				Track:         &a,
				AllTracks:     []core.Item{a, withoutURI, b},
				IsSingleTrack: true,
				Position:      0,
			},
			wantURIs:   []string{a.URI, b.URI},
			wantOffset: intPtr(0),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := playOptions(tt.req)
			if opts.ContextURI != tt.wantCtx {
				t.Errorf("ContextURI = %q, expected %q", opts.ContextURI, tt.wantCtx)
			}
			if len(tt.wantURIs) > 0 && !reflect.DeepEqual(opts.URIs, tt.wantURIs) {
				t.Errorf("URIs = %v, expected %v", opts.URIs, tt.wantURIs)
			}
			switch {
			case tt.wantOffset == nil && opts.Offset != nil:
				t.Errorf("Offset = %d, expected none", *opts.Offset)
			case tt.wantOffset != nil && opts.Offset == nil:
				t.Errorf("Offset = nil, expected %d", *tt.wantOffset)
			case tt.wantOffset != nil && *opts.Offset != *tt.wantOffset:
				t.Errorf("Offset = %d, expected %d", *opts.Offset, *tt.wantOffset)
			}
		})
	}
}

func intPtr(n int) *int {
	return &n
}
