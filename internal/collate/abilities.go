package collate

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"vdata-pipeline/internal/localisation"
	"vdata-pipeline/internal/textutil"
	"vdata-pipeline/internal/vdata"

	"github.com/rs/zerolog/log"
)

// AbilitiesFile is the consolidated ability document.
const AbilitiesFile = "all_ability_data.json"

var (
	intPrefix   = regexp.MustCompile(`^[+-]?\d+`)
	floatPrefix = regexp.MustCompile(`^[+-]?(?:\d+\.?\d*|\.\d+)(?:[eE][+-]?\d+)?`)
	keyPrefix   = regexp.MustCompile(`^m_(str|subclass|E|_)`)
)

// Ability is the converted view of one ability record.
type Ability struct {
	Stats          *vdata.Block    `json:"stats"`
	TooltipDetails *TooltipSection `json:"tooltipDetails,omitempty"`
	SpiritScaling  *vdata.Block    `json:"spirit_scaling,omitempty"`
}

// TooltipSection is the tooltip shown for an ability. Properties carry the
// property key, the transformed property data and, when present, its scale
// function.
type TooltipSection struct {
	Description     string         `json:"description"`
	Properties      []*vdata.Block `json:"properties"`
	BasicProperties []*vdata.Block `json:"basicProperties,omitempty"`
	UpgradeRequired *vdata.Block   `json:"upgradeRequired,omitempty"`
	Upgrades        []*vdata.Block `json:"upgrades,omitempty"`
}

// wellKnownStats are the ability properties exposed under a fixed stat name.
var wellKnownStats = []struct {
	property string
	stat     string
	integer  bool
}{
	{"AbilityDamage", "damage", false},
	{"AbilityDuration", "duration", false},
	{"AbilityCooldown", "cooldown", false},
	{"AbilityCastRange", "range", false},
	{"AbilityCharges", "charges", true},
	{"AbilityCooldownBetweenCharge", "charge_restore_time", false},
	{"AbilityChannelTime", "channel_duration", false},
	{"AbilityResourceCost", "resource_cost", false},
}

// Abilities converts every ability bound to a hero, keyed by ability name in
// order of first appearance. Text comes from the combined english tables.
func Abilities(src *Sources) (*Collection[*Ability], error) {
	if err := src.require("abilities", []string{ScriptHeroes, ScriptAbilities}, nil); err != nil {
		return nil, err
	}
	abilities := src.Script(ScriptAbilities)
	english := localisation.Combine(src.Localisation)["english"]

	out := NewCollection[*Ability]()
	src.Script(ScriptHeroes).Each(func(heroKey string, v vdata.Value) bool {
		if !strings.HasPrefix(heroKey, heroPrefix) {
			return true
		}
		vdata.AsBlock(v).Block("m_mapBoundAbilities").Each(func(slot string, a vdata.Value) bool {
			key, ok := vdata.AsString(a)
			if !ok || key == "" {
				return true
			}
			if _, seen := out.Get(key); seen {
				return true
			}
			ability, err := ConvertAbility(abilities, key, english)
			if err != nil {
				log.Warn().Err(err).Str("hero", heroKey).Str("slot", BoundAbility(slot)).Msg("Skipping ability")
				return true
			}
			out.Add(key, ability)
			return true
		})
		return true
	})

	log.Info().Int("count", out.Len()).Msg("Collated abilities")
	return out, nil
}

// ConvertAbility converts the ability at key.
func ConvertAbility(abilities *vdata.Block, key string, loc *localisation.Table) (*Ability, error) {
	record := abilities.Block(key)
	if record == nil {
		return nil, fmt.Errorf("ability %s not found in abilities data", key)
	}

	ability := &Ability{
		Stats:         abilityStats(record),
		SpiritScaling: spiritScaling(record),
	}
	if details := record.Block("m_AbilityTooltipDetails"); details != nil {
		ability.TooltipDetails = tooltipDetails(details, record, loc)
	}
	return ability, nil
}

func abilityStats(record *vdata.Block) *vdata.Block {
	props := record.Block("m_mapAbilityProperties")
	stats := vdata.NewBlock()

	for _, s := range wellKnownStats {
		raw := propertyValue(props, s.property)
		if raw == nil {
			continue
		}
		var (
			n  float64
			ok bool
		)
		if s.integer {
			var i int64
			i, ok = parseIntPrefix(raw)
			n = float64(i)
		} else {
			n, ok = parseFloatPrefix(raw)
		}
		if ok {
			stats.Set(s.stat, vdata.Number(n))
		}
	}

	props.Each(func(key string, v vdata.Value) bool {
		stat := textutil.SnakeCase(strings.Replace(key, "Ability", "", 1))
		if truthy(get(stats, stat)) {
			return true
		}
		if n, ok := parseFloatPrefix(get(vdata.AsBlock(v), "m_strValue")); ok {
			stats.Set(stat, vdata.Number(n))
		}
		return true
	})
	return stats
}

// propertyValue returns m_strValue of a present property, or nil.
func propertyValue(props *vdata.Block, name string) vdata.Value {
	prop := props.Block(name)
	if prop == nil {
		return nil
	}
	v, ok := prop.Get("m_strValue")
	if !ok {
		return vdata.String("")
	}
	return v
}

func spiritScaling(record *vdata.Block) *vdata.Block {
	scaling := vdata.NewBlock()
	record.Block("m_mapScalingStats").Each(func(key string, v vdata.Value) bool {
		stat := vdata.AsBlock(v)
		if str(stat, "eScalingStat") != "ETechPower" {
			return true
		}
		scale := get(stat, "flScale")
		if scale == nil {
			return true
		}
		for _, kind := range []string{"Damage", "Duration", "Range", "Cooldown"} {
			if strings.Contains(key, kind) {
				scaling.Set(strings.ToLower(kind)+"_scaling", scale)
			}
		}
		return true
	})
	if scaling.Len() == 0 {
		return nil
	}
	return scaling
}

// tooltipDetails returns the last section that has properties. A section
// with a titled property block yields that block as its own section.
func tooltipDetails(details, record *vdata.Block, loc *localisation.Table) *TooltipSection {
	var result *TooltipSection

	for _, item := range details.Sequence("m_vecAbilityInfoSections").Items() {
		section := vdata.AsBlock(item)
		if section == nil {
			continue
		}
		converted := &TooltipSection{Properties: []*vdata.Block{}}
		if s := str(section, "m_strLocString"); s != "" {
			key := strings.Replace(s, "#", "", 1)
			text := loc.Lookup(key)
			if text == "" {
				text = key
			}
			converted.Description = unescape(text)
		}
		upgradeRequired := str(section, "m_strAbilityPropertyUpgradeRequired")

		for _, b := range section.Sequence("m_vecAbilityPropertiesBlock").Items() {
			block := vdata.AsBlock(b)
			if block == nil {
				continue
			}
			props := tooltipProperties(record, block.Sequence("m_vecAbilityProperties"))
			title := str(block, "m_strPropertiesTitleLocString")
			if title == "" {
				converted.Properties = append(converted.Properties, props...)
				continue
			}
			sub := &TooltipSection{
				Description: unescape(loc.Lookup(strings.Replace(title, "#", "", 1))),
				Properties:  props,
			}
			if upgradeRequired != "" {
				sub.UpgradeRequired = dataProperty(record, upgradeRequired)
			}
			result = sub
		}

		if basic := section.Sequence("m_vecBasicProperties"); basic != nil {
			converted.BasicProperties = []*vdata.Block{}
			for _, p := range basic.Items() {
				name, _ := vdata.AsString(p)
				converted.BasicProperties = append(converted.BasicProperties, dataProperty(record, name))
			}
		}
		if upgradeRequired != "" {
			converted.UpgradeRequired = dataProperty(record, upgradeRequired)
		}
		for _, u := range record.Sequence("m_vecAbilityUpgrades").Items() {
			converted.Upgrades = append(converted.Upgrades, abilityUpgrade(vdata.AsBlock(u), loc))
		}

		if len(converted.Properties) > 0 || len(converted.BasicProperties) > 0 {
			result = converted
		}
	}
	return result
}

func tooltipProperties(record *vdata.Block, seq *vdata.Sequence) []*vdata.Block {
	out := []*vdata.Block{}
	for _, item := range seq.Items() {
		prop := vdata.AsBlock(item)
		if prop == nil {
			continue
		}
		name := str(prop, "m_strImportantProperty")
		if name == "" {
			name = str(prop, "m_strPropertyName")
		}

		p := dataProperty(record, name)
		if v := get(prop, "m_bRequiresAbilityUpgrade"); truthy(v) {
			p.Set("requiresUpgrade", v)
		}
		if effect := str(prop, "m_strStatusEffectValue"); effect != "" {
			p.Set("statusEffect", dataProperty(record, effect))
		}
		if v, ok := prop.Get("m_bShowPropertyValue"); ok {
			p.Set("isShown", v)
		}
		out = append(out, p)
	}
	return out
}

func abilityUpgrade(upgrade *vdata.Block, loc *localisation.Table) *vdata.Block {
	out := vdata.NewBlock()
	for _, item := range upgrade.Sequence("m_vecPropertyUpgrades").Items() {
		p := vdata.AsBlock(item)
		name := str(p, "m_strPropertyName")
		if n, ok := parseFloatPrefix(get(p, "m_strBonus")); ok {
			out.Set(textutil.SnakeCase(name), vdata.Number(n))
		}
		if label, ok := loc.Get(name + "_label"); ok {
			out.Set("name", vdata.String(label))
		}
	}
	return out
}

// dataProperty describes the property (or record field) key: the key itself,
// its transformed data and its scale function.
func dataProperty(record *vdata.Block, key string) *vdata.Block {
	var data vdata.Value
	if v := get(record.Block("m_mapAbilityProperties"), key); truthy(v) {
		data = transform(v)
	} else {
		data = transform(get(record, key))
	}
	scale := scaleFunction(data)

	out := vdata.NewBlock()
	out.Set("key", vdata.String(key))
	vdata.AsBlock(data).Each(func(k string, v vdata.Value) bool {
		if k == "scale_function" {
			if scale != nil {
				out.Set(k, scale)
			}
			return true
		}
		out.Set(k, v)
		return true
	})
	return out
}

func scaleFunction(data vdata.Value) *vdata.Block {
	sf := vdata.AsBlock(data).Block("scale_function")
	scale, ok := sf.Get("m_fl_stat_scale")
	if !ok {
		return nil
	}
	kind := str(sf, "m_e_specific_stat_scale_type")
	if kind == "" {
		kind = "ETechPower"
	}
	out := vdata.NewBlock()
	out.Set("value", scale)
	out.Set("type", vdata.String(ScaleType(kind)))
	return out
}

// transform renames block keys recursively with transformKey.
func transform(v vdata.Value) vdata.Value {
	switch x := v.(type) {
	case *vdata.Block:
		out := vdata.NewBlock()
		x.Each(func(k string, child vdata.Value) bool {
			out.Set(transformKey(k), transform(child))
			return true
		})
		return out
	case *vdata.Sequence:
		out := vdata.NewSequence()
		for _, child := range x.Items() {
			out.Append(transform(child))
		}
		return out
	default:
		return v
	}
}

// transformKey drops the m_str, m_subclass, m_E and m__ prefixes and
// snake-cases the rest. CSSClass becomes type.
func transformKey(key string) string {
	key = keyPrefix.ReplaceAllString(key, "")
	if key == "CSSClass" {
		key = "type"
	}
	return textutil.SnakeCase(key)
}

// unescape strips one surrounding quote at each end and resolves JSON
// escapes. Text that is not a valid JSON string body is returned as is.
func unescape(s string) string {
	s = strings.TrimPrefix(s, `"`)
	s = strings.TrimSuffix(s, `"`)
	var out string
	if err := json.Unmarshal([]byte(`"`+s+`"`), &out); err != nil {
		return s
	}
	return out
}

// parseFloatPrefix reads the leading decimal number of a scalar, the way a
// lenient float parse treats "12.5m" as 12.5.
func parseFloatPrefix(v vdata.Value) (float64, bool) {
	switch x := v.(type) {
	case vdata.Number:
		f := float64(x)
		return f, !math.IsNaN(f) && !math.IsInf(f, 0)
	case vdata.String:
		m := floatPrefix.FindString(strings.TrimSpace(string(x)))
		if m == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(m, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}
