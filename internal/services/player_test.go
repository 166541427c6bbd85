package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/desertthunder/spx/internal/shared"
)

func TestPlayer(t *testing.T) {
	ctx := context.Background()

	t.Run("Devices", func(t *testing.T) {
		svc := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/me/player/devices" {
				t.Errorf("unexpected path %s", r.URL.Path)
			}
			fmt.Fprint(w, `{"devices": [{"id": "d1", "name": "Desk Speaker", "type": "Speaker", "is_active": true, "volume_percent": 60}]}`)
		}))

		devices, err := svc.Devices(ctx)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(devices) != 1 || devices[0].Name != "Desk Speaker" || !devices[0].IsActive {
			t.Errorf("unexpected devices: %+v", devices)
		}
	})

	t.Run("PlaybackState", func(t *testing.T) {
		t.Run("Active Playback", func(t *testing.T) {
			svc := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, `{
					"device": {"id": "d1", "name": "Desk Speaker"},
					"is_playing": true,
					"progress_ms": 42000,
					"item": {"id": "tr1", "name": "Now Playing"}
				}`)
			}))

			state, err := svc.PlaybackState(ctx)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if state == nil || !state.IsPlaying || state.Item.Name != "Now Playing" {
				t.Errorf("unexpected state: %+v", state)
			}
		})

		t.Run("Nothing Playing", func(t *testing.T) {
			svc := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNoContent)
			}))

			state, err := svc.PlaybackState(ctx)
			if err != nil {
				t.Fatalf("expected no error on 204, got %v", err)
			}
			if state != nil {
				t.Errorf("expected nil state when nothing is playing, got %+v", state)
			}
		})
	})

	t.Run("Play", func(t *testing.T) {
		t.Run("With Context URI", func(t *testing.T) {
			var body map[string]any
			svc := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPut || r.URL.Path != "/me/player/play" {
					t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
				}
				json.NewDecoder(r.Body).Decode(&body)
				w.WriteHeader(http.StatusNoContent)
			}))

			if err := svc.Play(ctx, "spotify:playlist:p1", nil); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if body["context_uri"] != "spotify:playlist:p1" {
				t.Errorf("unexpected body: %v", body)
			}
		})

		t.Run("Resume Without Body", func(t *testing.T) {
			svc := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.ContentLength > 0 {
					t.Error("expected empty body on resume")
				}
				w.WriteHeader(http.StatusNoContent)
			}))

			if err := svc.Play(ctx, "", nil); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
		})

		t.Run("No Active Device", func(t *testing.T) {
			svc := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNotFound)
				fmt.Fprint(w, `{"error": {"status": 404, "message": "Device not found"}}`)
			}))

			err := svc.Play(ctx, "", nil)
			if !errors.Is(err, shared.ErrNoActiveDevice) {
				t.Errorf("expected ErrNoActiveDevice, got %v", err)
			}
		})
	})

	t.Run("Seek Rejects Negative Position", func(t *testing.T) {
		svc := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Error("no request should be made for invalid position")
		}))

		if err := svc.Seek(ctx, -1); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("SetVolume Bounds", func(t *testing.T) {
		svc := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if got := r.URL.Query().Get("volume_percent"); got != "80" {
				t.Errorf("unexpected volume %s", got)
			}
			w.WriteHeader(http.StatusNoContent)
		}))

		if err := svc.SetVolume(ctx, 80); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if err := svc.SetVolume(ctx, 101); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("Queue", func(t *testing.T) {
		svc := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if got := r.URL.Query().Get("uri"); got != "spotify:track:tr1" {
				t.Errorf("unexpected uri %s", got)
			}
			w.WriteHeader(http.StatusNoContent)
		}))

		if err := svc.Queue(ctx, "spotify:track:tr1"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if err := svc.Queue(ctx, ""); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})
}
