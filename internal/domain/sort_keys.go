package domain

// Column keys accepted by the table sort.
const (
	KeyID          = "id"
	KeyName        = "name"
	KeyWeapon      = "weapon"
	KeyWinRate     = "winRate"
	KeyPickRate    = "pickRate"
	KeyMMRGain     = "mmrGain"
	KeyTier        = "tier"
	KeyRankBracket = "rankBracket"
	KeyAvgSurvival = "avgSurvival"
	KeySamples     = "samples"
)

func (c CharacterSummary) SortValue(key string) any {
	switch key {
	case KeyID:
		return c.ID
	case KeyName:
		return c.Name
	case KeyWeapon:
		return c.Weapon
	case KeyWinRate:
		return c.WinRate
	case KeyPickRate:
		return c.PickRate
	case KeyMMRGain:
		return c.MMRGain
	case KeyTier:
		return c.Tier.Rank()
	case KeyRankBracket:
		return c.RankBracket
	case KeyAvgSurvival:
		if c.AvgSurvival == nil {
			return nil
		}
		return *c.AvgSurvival
	}
	return nil
}

func (w WeaponStat) SortValue(key string) any {
	switch key {
	case KeyID:
		return w.CharacterID
	case KeyWeapon, KeyName:
		return w.Weapon
	case KeyWinRate:
		return w.WinRate
	case KeyPickRate:
		return w.PickRate
	case KeyMMRGain:
		return w.MMRGain
	}
	return nil
}

func (c CompSummary) SortValue(key string) any {
	switch key {
	case KeyID, KeyName:
		return c.Key()
	case KeyWinRate:
		return c.WinRate
	case KeyPickRate:
		return c.PickRate
	case KeyMMRGain:
		return c.MMRGain
	case KeySamples:
		return c.Samples
	}
	return nil
}

func (c ClusterTriadSummary) SortValue(key string) any {
	switch key {
	case KeyID, KeyName:
		return c.Clusters[0] + c.Clusters[1] + c.Clusters[2]
	case KeyWinRate:
		return c.WinRate
	case KeyPickRate:
		return c.PickRate
	case KeyMMRGain:
		return c.MMRGain
	case KeySamples:
		return c.Samples
	}
	return nil
}
