package server

import (
	"er-dashboard/internal/domain"
	"er-dashboard/internal/honey"
	"er-dashboard/internal/service"
)

type GetRosterRequest struct {
	Tiers     []string `json:"tiers,omitempty"`
	Search    string   `json:"search,omitempty"`
	SortKey   string   `json:"sortKey,omitempty"`
	Direction string   `json:"direction,omitempty"`
	HoneyOnly bool     `json:"honeyOnly,omitempty"`
	HoneyTopK int      `json:"honeyTopK,omitempty"`
}

func (r *GetRosterRequest) query() service.RosterQuery {
	return service.RosterQuery{
		Tiers:     r.Tiers,
		Search:    r.Search,
		SortKey:   r.SortKey,
		Direction: r.Direction,
		HoneyOnly: r.HoneyOnly,
		HoneyTopK: r.HoneyTopK,
	}
}

type GetRosterResponse = service.RosterPage

type GetWeaponsRequest struct {
	CharacterID int    `json:"characterId"`
	SortKey     string `json:"sortKey,omitempty"`
	Direction   string `json:"direction,omitempty"`
}

type GetWeaponsResponse struct {
	CharacterID int                 `json:"characterId"`
	Weapons     []domain.WeaponStat `json:"weapons"`
}

type GetHoneyRequest struct {
	TopK        int     `json:"topK,omitempty"`
	TopFraction float64 `json:"topFraction,omitempty"`
}

type GetHoneyResponse struct {
	IDs        []int            `json:"ids"`
	Mode       honey.Mode       `json:"mode"`
	Thresholds honey.Thresholds `json:"thresholds"`
}

type SuggestTeamsRequest struct {
	Anchors [][]int `json:"anchors,omitempty"`
	Pool    []int   `json:"pool,omitempty"`
	TopK    int     `json:"topK,omitempty"`
}

type SuggestTeamsResponse struct {
	Suggestions []domain.CompSuggestion `json:"suggestions"`
}

type ListPatchNotesRequest struct {
	Kind   string `json:"kind,omitempty"`
	Since  string `json:"since,omitempty"`
	Limit  int    `json:"limit,omitempty"`
	Target string `json:"target,omitempty"`
}

type ListPatchNotesResponse struct {
	Notes []domain.PatchNote `json:"notes"`
}

type ListClustersRequest struct{}

type ListClustersResponse struct {
	Clusters []domain.ClusterMeta `json:"clusters"`
}

type ListCompsRequest struct {
	SortKey   string `json:"sortKey,omitempty"`
	Direction string `json:"direction,omitempty"`
	Cluster   string `json:"cluster,omitempty"`
}

type ListCompsResponse struct {
	Comps []domain.CompSummary `json:"comps"`
}

type ListClusterTriadsRequest struct {
	SortKey   string `json:"sortKey,omitempty"`
	Direction string `json:"direction,omitempty"`
}

type ListClusterTriadsResponse struct {
	Triads []domain.ClusterTriadSummary `json:"triads"`
}

type RefreshRequest struct {
	Force bool `json:"force,omitempty"`
}

type RefreshResponse = service.RefreshResult
