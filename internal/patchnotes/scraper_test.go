package patchnotes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"er-dashboard/internal/domain"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const listingHTML = `<!doctype html>
<html><body>
<article class="patch-note" data-version="1.20.0">
  <h2 class="patch-version">Patch 1.20.0</h2>
  <time datetime="2024-06-13">June 13</time>
  <ul>
    <li class="patch-entry">
      <span class="target">Jackie</span><span class="field">Skill Damage</span>
      <span class="before">40</span><span class="after">45</span>
    </li>
    <li class="patch-entry" data-target-kind="weapon">
      <span class="target">Axe</span><span class="field">Attack Speed</span>
      <span class="before">1.2</span><span class="after">1.1</span>
    </li>
    <li class="patch-entry" data-target-kind="system" data-change="rework">
      <span class="target">Vision</span><span class="field">Ward duration</span>
      <span class="before">old rules</span><span class="after">new rules</span>
    </li>
    <li class="patch-entry"><span class="field">orphan row</span></li>
  </ul>
</article>
<article class="patch-note">
  <h2 class="patch-version">1.20.1 Hotfix</h2>
  <time>2024-06-20</time>
  <ul>
    <li class="patch-entry" data-target-kind="bogus" data-change="nerf">
      <span class="target">Aya</span><span class="field">Cooldown</span>
      <span class="before">8s</span><span class="after">9s</span>
    </li>
  </ul>
</article>
<article class="patch-note"><p>no version here</p></article>
</body></html>`

func TestParse(t *testing.T) {
	notes, err := Parse(strings.NewReader(listingHTML))
	require.NoError(t, err)
	require.Len(t, notes, 2)

	hotfix := notes[0]
	assert.Equal(t, "1.20.1 Hotfix", hotfix.Version)
	assert.Equal(t, domain.PatchKindHotfix, hotfix.Kind)
	assert.Equal(t, time.Date(2024, 6, 20, 0, 0, 0, 0, time.UTC), hotfix.Date)
	require.Len(t, hotfix.Entries, 1)
	assert.Equal(t, domain.TargetCharacter, hotfix.Entries[0].TargetKind)
	assert.Equal(t, domain.ChangeNerf, hotfix.Entries[0].ChangeType)
	require.NotNil(t, hotfix.Entries[0].Delta)
	assert.InDelta(t, 1.0, *hotfix.Entries[0].Delta, 1e-9)

	release := notes[1]
	assert.Equal(t, "1.20.0", release.Version)
	assert.Equal(t, domain.PatchKindRelease, release.Kind)
	require.Len(t, release.Entries, 3)

	buff := release.Entries[0]
	assert.Equal(t, "Jackie", buff.Target)
	assert.Equal(t, "Skill Damage", buff.Field)
	assert.Equal(t, domain.ChangeBuff, buff.ChangeType)
	require.NotNil(t, buff.Delta)
	assert.InDelta(t, 5.0, *buff.Delta, 1e-9)

	nerf := release.Entries[1]
	assert.Equal(t, domain.TargetWeapon, nerf.TargetKind)
	assert.Equal(t, domain.ChangeNerf, nerf.ChangeType)
	assert.InDelta(t, -0.1, *nerf.Delta, 1e-9)

	rework := release.Entries[2]
	assert.Equal(t, domain.TargetSystem, rework.TargetKind)
	assert.Equal(t, domain.ChangeRework, rework.ChangeType)
	assert.Nil(t, rework.Delta)
}

func TestParseEmptyDocument(t *testing.T) {
	notes, err := Parse(strings.NewReader("<html><body></body></html>"))
	require.NoError(t, err)
	assert.Empty(t, notes)
}

func TestInferChange(t *testing.T) {
	up, down, flat := 2.0, -1.0, 0.0
	assert.Equal(t, domain.ChangeBuff, InferChange(&up))
	assert.Equal(t, domain.ChangeNerf, InferChange(&down))
	assert.Equal(t, domain.ChangeAdjust, InferChange(&flat))
	assert.Equal(t, domain.ChangeAdjust, InferChange(nil))
}

func TestClientFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/patches" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(listingHTML))
	}))
	defer srv.Close()

	client := NewClient(zerolog.Nop())

	notes, err := client.Fetch(context.Background(), srv.URL+"/patches")
	require.NoError(t, err)
	assert.Len(t, notes, 2)

	_, err = client.Fetch(context.Background(), srv.URL+"/missing")
	assert.Error(t, err)
}
