package api

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"er-dashboard/internal/domain"
	"er-dashboard/internal/stats"

	"github.com/rs/zerolog"
)

var ErrInvalidRecord = errors.New("invalid upstream record")

// Field aliases seen across upstream payload versions, preferred name first.
var (
	idKeys       = []string{"id", "characterId", "character_id", "code"}
	nameKeys     = []string{"nameKr", "NameKr", "name", "Name"}
	weaponKeys   = []string{"weapon", "weaponType", "weapon_type", "bestWeapon"}
	winRateKeys  = []string{"winRate", "win_rate", "WinRate"}
	pickRateKeys = []string{"pickRate", "pick_rate", "PickRate"}
	mmrGainKeys  = []string{"mmrGain", "mmr_gain", "MMRGain", "avgMmr"}
	tierKeys     = []string{"tier", "Tier"}
	bracketKeys  = []string{"rankBracket", "rank_bracket", "tierGroup"}
	survivalKeys = []string{"avgSurvival", "avg_survival", "survivalTime"}
	imageKeys    = []string{"image", "imageUrl", "image_url", "img"}
)

// NormalizeCharacter resolves one loose upstream record into the canonical
// summary. Rates given as percentages are scaled to fractions.
func NormalizeCharacter(raw map[string]any) (domain.CharacterSummary, error) {
	id, ok := lookupInt(raw, idKeys)
	if !ok || id <= 0 {
		return domain.CharacterSummary{}, fmt.Errorf("%w: missing id", ErrInvalidRecord)
	}
	name := lookupString(raw, nameKeys)
	if name == "" {
		return domain.CharacterSummary{}, fmt.Errorf("%w: character %d has no name", ErrInvalidRecord, id)
	}

	c := domain.CharacterSummary{
		ID:          id,
		Name:        name,
		Weapon:      lookupString(raw, weaponKeys),
		RankBracket: lookupString(raw, bracketKeys),
		Image:       lookupString(raw, imageKeys),
	}

	var err error
	if c.WinRate, err = lookupRate(raw, winRateKeys); err != nil {
		return domain.CharacterSummary{}, fmt.Errorf("%w: character %d win rate: %v", ErrInvalidRecord, id, err)
	}
	if c.PickRate, err = lookupRate(raw, pickRateKeys); err != nil {
		return domain.CharacterSummary{}, fmt.Errorf("%w: character %d pick rate: %v", ErrInvalidRecord, id, err)
	}
	if c.MMRGain, err = lookupMMR(raw); err != nil {
		return domain.CharacterSummary{}, fmt.Errorf("%w: character %d mmr gain: %v", ErrInvalidRecord, id, err)
	}

	tier := domain.Tier(strings.ToUpper(lookupString(raw, tierKeys)))
	switch {
	case tier == "":
		c.Tier = TierForWinRate(c.WinRate)
	case tier.Valid():
		c.Tier = tier
	default:
		return domain.CharacterSummary{}, fmt.Errorf("%w: character %d has unknown tier %q", ErrInvalidRecord, id, tier)
	}

	for _, k := range survivalKeys {
		if sec, ok := stats.DurationSeconds(raw[k]); ok && sec >= 0 && sec <= stats.MaxDurationSec {
			s := int(math.Round(sec))
			c.AvgSurvival = &s
			break
		}
	}

	return c, nil
}

// NormalizeWeapon resolves one upstream weapon variant for a character.
func NormalizeWeapon(characterID int, raw map[string]any) (domain.WeaponStat, error) {
	weapon := lookupString(raw, append([]string{"name", "Name"}, weaponKeys...))
	if weapon == "" {
		return domain.WeaponStat{}, fmt.Errorf("%w: weapon without name", ErrInvalidRecord)
	}

	w := domain.WeaponStat{CharacterID: characterID, Weapon: weapon}
	var err error
	if w.WinRate, err = lookupRate(raw, winRateKeys); err != nil {
		return domain.WeaponStat{}, fmt.Errorf("%w: weapon %s win rate: %v", ErrInvalidRecord, weapon, err)
	}
	if w.PickRate, err = lookupRate(raw, pickRateKeys); err != nil {
		return domain.WeaponStat{}, fmt.Errorf("%w: weapon %s pick rate: %v", ErrInvalidRecord, weapon, err)
	}
	if w.MMRGain, err = lookupMMR(raw); err != nil {
		return domain.WeaponStat{}, fmt.Errorf("%w: weapon %s mmr gain: %v", ErrInvalidRecord, weapon, err)
	}
	return w, nil
}

// NormalizeRoster keeps the first valid record per id and logs the rest.
func NormalizeRoster(raws []map[string]any, logger zerolog.Logger) []domain.CharacterSummary {
	out := make([]domain.CharacterSummary, 0, len(raws))
	seen := make(map[int]struct{}, len(raws))
	for i, raw := range raws {
		c, err := NormalizeCharacter(raw)
		if err != nil {
			logger.Warn().Err(err).Int("index", i).Msg("dropping upstream character")
			continue
		}
		if _, dup := seen[c.ID]; dup {
			logger.Warn().Int("character_id", c.ID).Msg("dropping duplicate upstream character")
			continue
		}
		seen[c.ID] = struct{}{}
		out = append(out, c)
	}
	return out
}

// TierForWinRate buckets a win rate when the upstream omits the tier.
func TierForWinRate(winRate float64) domain.Tier {
	switch {
	case winRate >= 0.56:
		return domain.TierS
	case winRate >= 0.53:
		return domain.TierA
	case winRate >= 0.50:
		return domain.TierB
	case winRate >= 0.47:
		return domain.TierC
	default:
		return domain.TierD
	}
}

func lookupString(raw map[string]any, keys []string) string {
	for _, k := range keys {
		switch v := raw[k].(type) {
		case string:
			if s := strings.TrimSpace(v); s != "" {
				return s
			}
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	return ""
}

// lookupNumber reports the first numeric value under keys. A value that
// parses but is not finite is an error rather than a miss.
func lookupNumber(raw map[string]any, keys []string) (float64, bool, error) {
	for _, k := range keys {
		switch v := raw[k].(type) {
		case float64:
			return finite(k, v)
		case int:
			return float64(v), true, nil
		case string:
			s := strings.TrimSuffix(strings.TrimSpace(v), "%")
			f, err := strconv.ParseFloat(s, 64)
			switch {
			case err == nil:
				return finite(k, f)
			case errors.Is(err, strconv.ErrRange):
				return 0, false, fmt.Errorf("%s out of range: %q", k, v)
			}
		}
	}
	return 0, false, nil
}

func finite(key string, v float64) (float64, bool, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false, fmt.Errorf("%s is not finite: %g", key, v)
	}
	return v, true, nil
}

func lookupInt(raw map[string]any, keys []string) (int, bool) {
	v, ok, err := lookupNumber(raw, keys)
	if err != nil || !ok || v != math.Trunc(v) || math.Abs(v) > math.MaxInt32 {
		return 0, false
	}
	return int(v), true
}

// lookupMMR reads the mmr gain. A missing value is zero.
func lookupMMR(raw map[string]any) (float64, error) {
	v, _, err := lookupNumber(raw, mmrGainKeys)
	return v, err
}

// lookupRate reads a rate as a fraction. Values above 1 are percentages.
// A missing rate is zero.
func lookupRate(raw map[string]any, keys []string) (float64, error) {
	v, ok, err := lookupNumber(raw, keys)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, nil
	}
	if v < 0 || v > 100 {
		return 0, fmt.Errorf("out of range: %g", v)
	}
	if v > 1 {
		v /= 100
	}
	return v, nil
}
