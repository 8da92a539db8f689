package collate

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"vdata-pipeline/internal/interpolation"
	"vdata-pipeline/internal/textutil"
	"vdata-pipeline/internal/vdata"

	"github.com/rs/zerolog/log"
)

// ItemsFile is the consolidated item document.
const ItemsFile = "all_item_data.json"

const abilityTypeItem = "EAbilityType_Item"

// Item is the consolidated view of one shop item.
type Item struct {
	// Key is the record key in the abilities script.
	Key         string
	Name        string
	Description *string
	// Cost is the tier price as text; "null" without a tier and "undefined"
	// when the tier has no price.
	Cost        string
	Tier        *string
	Activation  string
	Slot        string
	Components  *vdata.Sequence
	TargetTypes []string
	ShopFilters []string
	Disabled    bool
	// Properties maps underscore_case property names to their m_strValue.
	Properties  *vdata.Block
}

// MarshalJSON writes the fixed fields first, then the properties. A property
// whose name matches a fixed field replaces it in place.
func (it *Item) MarshalJSON() ([]byte, error) {
	obj := newObject()
	fields := []struct {
		key  string
		val  any
		omit bool
	}{
		{"name", it.Name, it.Name == ""},
		{"description", it.Description, it.Description == nil},
		{"cost", it.Cost, false},
		{"tier", it.Tier, false},
		{"activation", it.Activation, it.Activation == ""},
		{"slot", it.Slot, false},
		{"components", it.Components, false},
		{"target_types", it.TargetTypes, false},
		{"shop_filters", it.ShopFilters, false},
		{"disabled", it.Disabled, false},
	}
	for _, f := range fields {
		if f.omit {
			continue
		}
		if err := obj.set(f.key, f.val); err != nil {
			return nil, err
		}
	}

	var err error
	it.Properties.Each(func(k string, v vdata.Value) bool {
		err = obj.set(k, v)
		return err == nil
	})
	if err != nil {
		return nil, err
	}
	return obj.MarshalJSON()
}

// formatVars returns the item's text and numeric fields for description
// placeholders.
func (it *Item) formatVars() map[string]string {
	vars := map[string]string{
		"name":        it.Name,
		"description": "",
		"cost":        it.Cost,
		"slot":        it.Slot,
	}
	if it.Tier != nil {
		vars["tier"] = *it.Tier
	}
	if it.Activation != "" {
		vars["activation"] = it.Activation
	}
	it.Properties.Each(func(k string, v vdata.Value) bool {
		switch v.(type) {
		case vdata.String, vdata.Number:
			s, _ := vdata.AsString(v)
			vars[k] = s
		}
		return true
	})
	return vars
}

// Items collates every item-type record of the abilities script. keybinds
// fills the keybind placeholders of descriptions. Records that cannot be
// collated are logged and skipped.
func Items(src *Sources, keybinds map[string]string) (*Collection[*Item], error) {
	err := src.require("items",
		[]string{ScriptGenericData, ScriptAbilities},
		[]string{TableMods},
	)
	if err != nil {
		return nil, err
	}

	c := &itemCollator{
		prices:   src.Script(ScriptGenericData).Sequence("m_nItemPricePerTier"),
		src:      src,
		keybinds: keybinds,
	}

	out := NewCollection[*Item]()
	src.Script(ScriptAbilities).Each(func(key string, v vdata.Value) bool {
		record := vdata.AsBlock(v)
		if record == nil {
			return true
		}
		if t, _ := record.String("m_eAbilityType"); t != abilityTypeItem {
			return true
		}

		item, err := c.collate(key, record)
		if err != nil {
			log.Error().Err(err).Str("item", key).Msg("Failed to collate item")
			return true
		}
		out.Add(key, item)
		return true
	})

	log.Info().Int("count", out.Len()).Msg("Collated items")
	return out, nil
}

type itemCollator struct {
	prices   *vdata.Sequence
	src      *Sources
	keybinds map[string]string
}

func (c *itemCollator) collate(key string, record *vdata.Block) (*Item, error) {
	disabled, err := isDisabled(record)
	if err != nil {
		return nil, err
	}

	mods := c.src.Table(TableMods)
	gc := c.src.Table(TableGC)

	item := &Item{
		Key:        key,
		Name:       mods.Lookup(key),
		Cost:       "null",
		Slot:       SlotType(str(record, "m_eItemSlotType")),
		Disabled:   disabled,
		Properties: vdata.NewBlock(),
	}
	if item.Name == "" {
		item.Name = gc.Lookup(key)
	}

	if v, ok := record.Get("m_iItemTier"); ok {
		s, _ := vdata.AsString(v)
		tier := Tier(s)
		item.Tier = &tier
		item.Cost = c.price(tier)
	}
	if s := str(record, "m_eAbilityActivation"); s != "" {
		item.Activation = Activation(s)
	}
	if s := str(record, "m_nAbilityTargetTypes"); s != "" {
		item.TargetTypes = splitFlags(s, TargetType)
	}
	if s := str(record, "m_eShopFilters"); s != "" {
		item.ShopFilters = splitFlags(s, ShopFilter)
	}
	if v, ok := record.Get("m_vecComponentItems"); ok && truthy(v) {
		item.Components = vdata.AsSequence(v)
	}

	record.Block("m_mapAbilityProperties").Each(func(k string, v vdata.Value) bool {
		if val, ok := vdata.AsBlock(v).Get("m_strValue"); ok {
			item.Properties.Set(textutil.UnderscoreCase(k), val)
		}
		return true
	})

	// Disabled items are formatted too; a missing description renders "".
	formatted := interpolation.Format(mods.Lookup(key+"_desc"), item.formatVars(), c.keybinds)
	item.Description = &formatted
	if left := interpolation.Unresolved(formatted); len(left) > 0 {
		log.Debug().
			Str("item", key).
			Strs("placeholders", left).
			Str("description", textutil.Truncate(formatted, 60)).
			Msg("Unresolved description placeholders")
	}
	return item, nil
}

// price returns the price of a tier as text.
func (c *itemCollator) price(tier string) string {
	idx, ok := parseIntPrefix(vdata.String(tier))
	if !ok || idx < 0 || int(idx) >= c.prices.Len() {
		return "undefined"
	}
	s, ok := vdata.AsString(c.prices.At(int(idx)))
	if !ok {
		return "undefined"
	}
	return s
}

// isDisabled reads m_bDisabled, which must be a boolean when present.
func isDisabled(record *vdata.Block) (bool, error) {
	v, ok := record.Get("m_bDisabled")
	if !ok {
		return false, nil
	}
	switch x := v.(type) {
	case vdata.Bool:
		return bool(x), nil
	case vdata.String:
		switch x {
		case "true":
			return true, nil
		case "false":
			return false, nil
		}
	}
	s, _ := vdata.AsString(v)
	return false, fmt.Errorf("unexpected value for m_bDisabled: %q", s)
}

// splitFlags splits a pipe-separated flag list, dropping whitespace and empty
// entries, and maps every flag.
func splitFlags(s string, mapFn func(string) string) []string {
	out := []string{}
	for _, part := range strings.Split(s, "|") {
		clean := strings.Join(strings.Fields(part), "")
		if clean == "" {
			continue
		}
		out = append(out, mapFn(clean))
	}
	return out
}

// str renders the scalar at key, or "" when absent.
func str(b *vdata.Block, key string) string {
	s, _ := b.String(key)
	return s
}

// parseIntPrefix reads the leading integer of a scalar, the way a lenient
// integer parse treats "3px" as 3.
func parseIntPrefix(v vdata.Value) (int64, bool) {
	switch x := v.(type) {
	case vdata.Number:
		f := float64(x)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return int64(f), true
	case vdata.String:
		m := intPrefix.FindString(strings.TrimSpace(string(x)))
		if m == "" {
			return 0, false
		}
		n, err := strconv.ParseInt(m, 10, 64)
		if err != nil {
			return 0, false
		}
		return n, true
	}
	return 0, false
}
