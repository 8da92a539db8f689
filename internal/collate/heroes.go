package collate

import (
	"fmt"
	"strings"

	"vdata-pipeline/internal/vdata"

	"github.com/rs/zerolog/log"
)

// HeroesFile is the consolidated hero document.
const HeroesFile = "consolidated_hero_data.json"

const heroPrefix = "hero_"

// signatureSlots are the bound ability slots listed on a hero, in order.
var signatureSlots = []string{
	"ESlot_Signature_1",
	"ESlot_Signature_2",
	"ESlot_Signature_3",
	"ESlot_Signature_4",
}

// Hero is the consolidated view of one hero record. Values copied from the
// record keep their parsed type; absent ones are omitted.
type Hero struct {
	ID                vdata.Value   `json:"id,omitempty"`
	Name              string        `json:"name,omitempty"`
	NewPlayerFriendly bool          `json:"new_player_friendly"`
	StartingStats     StartingStats `json:"starting_stats"`
	// Abilities holds the four signature slots (null when unbound) followed
	// by the display names of the abilities found in the abilities script.
	Abilities         []vdata.Value `json:"abilities"`
	LevelUpgrades     *vdata.Block  `json:"level_upgrades"`
}

// StartingStats holds the base values of a hero's stats. Stats the record
// does not set are omitted.
type StartingStats struct {
	MaxMoveSpeed          vdata.Value `json:"max_move_speed,omitempty"`
	SprintSpeed           vdata.Value `json:"sprint_speed,omitempty"`
	CrouchSpeed           vdata.Value `json:"crouch_speed,omitempty"`
	MoveAcceleration      vdata.Value `json:"move_acceleration,omitempty"`
	LightMeleeDamage      vdata.Value `json:"light_melee_damage,omitempty"`
	HeavyMeleeDamage      vdata.Value `json:"heavy_melee_damage,omitempty"`
	MaxHealth             vdata.Value `json:"max_health,omitempty"`
	WeaponPower           vdata.Value `json:"weapon_power,omitempty"`
	ReloadSpeed           vdata.Value `json:"reload_speed,omitempty"`
	WeaponPowerScale      vdata.Value `json:"weapon_power_scale,omitempty"`
	Stamina               vdata.Value `json:"stamina,omitempty"`
	BaseHealthRegen       vdata.Value `json:"base_health_regen,omitempty"`
	StaminaRegenPerSecond vdata.Value `json:"stamina_regen_per_second,omitempty"`
}

// Heroes collates every hero_* record of the heroes script, keyed by the
// hero name without its prefix. Records that cannot be collated are logged
// and skipped.
func Heroes(src *Sources) (*Collection[*Hero], error) {
	if err := src.require("heroes", []string{ScriptHeroes, ScriptAbilities}, nil); err != nil {
		return nil, err
	}
	heroes := src.Script(ScriptHeroes)
	abilities := src.Script(ScriptAbilities)
	names := src.Table(TableHeroes)

	out := NewCollection[*Hero]()
	heroes.Each(func(key string, v vdata.Value) bool {
		if !strings.HasPrefix(key, heroPrefix) {
			return true
		}
		name := strings.TrimPrefix(key, heroPrefix)

		record := vdata.AsBlock(v)
		if record == nil {
			log.Error().Str("hero", name).Msg("Hero record is not a block")
			return true
		}

		hero, err := collateHero(record, abilities)
		if err != nil {
			log.Error().Err(err).Str("hero", name).Msg("Failed to collate hero")
			return true
		}
		hero.Name = names.Lookup(key)

		out.Add(name, hero)
		log.Debug().Str("hero", name).Msg("Processed hero")
		return true
	})

	log.Info().Int("count", out.Len()).Msg("Collated heroes")
	return out, nil
}

func collateHero(record, abilities *vdata.Block) (*Hero, error) {
	stats := record.Block("m_mapStartingStats")
	if stats == nil {
		return nil, fmt.Errorf("missing m_mapStartingStats")
	}
	bound := record.Block("m_mapBoundAbilities")
	if bound == nil {
		return nil, fmt.Errorf("missing m_mapBoundAbilities")
	}

	hero := &Hero{
		ID:            get(record, "m_HeroID"),
		StartingStats: startingStats(stats),
		LevelUpgrades: vdata.NewBlock(),
	}
	hero.NewPlayerFriendly, _ = vdata.AsBool(get(record, "m_bNewPlayerFriendly"))

	for _, slot := range signatureSlots {
		hero.Abilities = append(hero.Abilities, get(bound, slot))
	}
	for _, slot := range signatureSlots {
		key, ok := bound.String(slot)
		if !ok || key == "" {
			continue
		}
		if name := get(abilities.Block(key), "m_AbilityName"); truthy(name) {
			hero.Abilities = append(hero.Abilities, name)
		}
	}

	record.Block("m_mapStandardLevelUpUpgrades").Each(func(k string, v vdata.Value) bool {
		hero.LevelUpgrades.Set(strings.ToLower(k), v)
		return true
	})
	return hero, nil
}

func startingStats(b *vdata.Block) StartingStats {
	return StartingStats{
		MaxMoveSpeed:          get(b, "EMaxMoveSpeed"),
		SprintSpeed:           get(b, "ESprintSpeed"),
		CrouchSpeed:           get(b, "ECrouchSpeed"),
		MoveAcceleration:      get(b, "EMoveAcceleration"),
		LightMeleeDamage:      get(b, "ELightMeleeDamage"),
		HeavyMeleeDamage:      get(b, "EHeavyMeleeDamage"),
		MaxHealth:             get(b, "EMaxHealth"),
		WeaponPower:           get(b, "EWeaponPower"),
		ReloadSpeed:           get(b, "EReloadSpeed"),
		WeaponPowerScale:      get(b, "EWeaponPowerScale"),
		Stamina:               get(b, "EStamina"),
		BaseHealthRegen:       get(b, "EBaseHealthRegen"),
		StaminaRegenPerSecond: get(b, "EStaminaRegenPerSecond"),
	}
}

// get returns the value at key, or nil when absent.
func get(b *vdata.Block, key string) vdata.Value {
	v, _ := b.Get(key)
	return v
}

// truthy reports whether v is present and not an empty string, zero or false.
func truthy(v vdata.Value) bool {
	switch x := v.(type) {
	case nil:
		return false
	case vdata.String:
		return x != ""
	case vdata.Number:
		return x != 0
	case vdata.Bool:
		return bool(x)
	default:
		return true
	}
}

// SignatureAbilities returns the ability keys bound to the signature slots,
// skipping unbound slots.
func (h *Hero) SignatureAbilities() []string {
	var keys []string
	for i := 0; i < len(signatureSlots) && i < len(h.Abilities); i++ {
		if s, ok := h.Abilities[i].(vdata.String); ok && s != "" {
			keys = append(keys, string(s))
		}
	}
	return keys
}
