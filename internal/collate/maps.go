package collate

import "strings"

var scaleTypes = map[string]string{
	"ETechPower":         "spirit",
	"ELightMeleeDamage":  "melee",
	"ETechRange":         "range",
	"ETechCooldown":      "cooldown",
	"EBulletDamage":      "damage",
	"ETechDuration":      "duration",
	"EWeaponDamageScale": "weapon_damage",
}

var heroAttrs = map[string]string{
	"EMaxMoveSpeed":          "MaxMoveSpeed",
	"ESprintSpeed":           "SprintSpeed",
	"ECrouchSpeed":           "CrouchSpeed",
	"EMoveAcceleration":      "MoveAcceleration",
	"ELightMeleeDamage":      "LightMeleeDamage",
	"EHeavyMeleeDamage":      "HeavyMeleeDamage",
	"EMaxHealth":             "MaxHealth",
	"EWeaponPower":           "WeaponPower",
	"EReloadSpeed":           "ReloadSpeed",
	"EWeaponPowerScale":      "WeaponPowerScale",
	"EStamina":               "Stamina",
	"EBaseHealthRegen":       "BaseHealthRegen",
	"EStaminaRegenPerSecond": "StaminaRegenPerSecond",
	"EBulletDamage":          "BulletDamage",
}

var boundAbilities = map[string]string{
	"ESlot_Signature_1":    "Signature1",
	"ESlot_Signature_2":    "Signature2",
	"ESlot_Signature_3":    "Signature3",
	"ESlot_Signature_4":    "Signature4",
	"ESlot_Ultimate":       "Ultimate",
	"ESlot_Weapon_Primary": "WeaponPrimary",
}

var levelMods = map[string]string{
	"MODIFIER_VALUE_BASE_BULLET_DAMAGE_FROM_LEVEL": "BulletDamage",
	"MODIFIER_VALUE_BASE_MELEE_DAMAGE_FROM_LEVEL":  "MeleeDamage",
	"MODIFIER_VALUE_BASE_HEALTH_FROM_LEVEL":        "MaxHealth",
	"MODIFIER_VALUE_TECH_DAMAGE_PERCENT":           "TechDamagePerc",
	"MODIFIER_VALUE_TECH_ARMOR_DAMAGE_RESIST":      "TechResist",
	"MODIFIER_VALUE_BULLET_ARMOR_DAMAGE_RESIST":    "BulletResist",
	"MODIFIER_VALUE_BONUS_ATTACK_RANGE":            "BonusAttackRange",
}

var targetTypes = map[string]string{
	"CITADEL_UNIT_TARGET_ALL_ENEMY":       "AllEnemy",
	"CITADEL_UNIT_TARGET_ALL_FRIENDLY":    "AllFriendly",
	"CITADEL_UNIT_TARGET_CREEP_ENEMY":     "CreepEnemy",
	"CITADEL_UNIT_TARGET_HERO_ENEMY":      "HeroEnemy",
	"CITADEL_UNIT_TARGET_HERO_FRIENDLY":   "HeroFriendly",
	"CITADEL_UNIT_TARGET_HERO":            "Hero",
	"CITADEL_UNIT_TARGET_MINION_ENEMY":    "MinionEnemy",
	"CITADEL_UNIT_TARGET_MINION_FRIENDLY": "MinionFriendly",
	"CITADEL_UNIT_TARGET_NEUTRAL":         "Neutral",
	"CITADEL_UNIT_TARGET_PROP_ENEMY":      "PropEnemy",
	"CITADEL_UNIT_TARGET_TROOPER_ENEMY":   "TrooperEnemy",
	"CITADEL_UNIT_TARGET_TROPHY_ENEMY":    "TrophyEnemy",
}

var shopFilters = map[string]string{
	"EShopFilter_Consumable": "Consumable",
	"EShopFilter_Attribute":  "Attribute",
	"EShopFilter_Armor":      "Armor",
	"EShopFilter_Weapon":     "Weapon",
	"EShopFilter_Misc":       "Misc",
}

var activations = map[string]string{
	"CITADEL_ABILITY_ACTIVATION_INSTANT_CAST": "InstantCast",
	"CITADEL_ABILITY_ACTIVATION_PASSIVE":      "Passive",
	"CITADEL_ABILITY_ACTIVATION_PRESS":        "ActivationPress",
}

var slotTypes = map[string]string{
	"EItemSlotType_WeaponMod": "Weapon",
	"EItemSlotType_Armor":     "Armor",
	"EItemSlotType_Tech":      "Tech",
}

var shopAttrGroups = map[string]string{
	"m_eWeaponStatsDisplay":   "Weapon",
	"m_eVitalityStatsDisplay": "Vitality",
	"m_eSpiritStatsDisplay":   "Spirit",
}

// lookup returns m[key], falling back to the key itself.
func lookup(m map[string]string, key string) string {
	if v, ok := m[key]; ok {
		return v
	}
	return key
}

// ScaleType maps a scaling stat to its short name. Empty input is "Unknown".
func ScaleType(s string) string {
	if s == "" {
		return "Unknown"
	}
	return lookup(scaleTypes, s)
}

func HeroAttr(s string) string { return lookup(heroAttrs, s) }
func BoundAbility(s string) string { return lookup(boundAbilities, s) }
func LevelMod(s string) string { return lookup(levelMods, s) }
func TargetType(s string) string { return lookup(targetTypes, s) }
func ShopFilter(s string) string { return lookup(shopFilters, s) }
func Activation(s string) string { return lookup(activations, s) }

// SlotType maps an item slot. Empty input is "None".
func SlotType(s string) string {
	if s == "" {
		return "None"
	}
	return lookup(slotTypes, s)
}

// Tier strips the EModTier_ prefix from an item tier.
func Tier(s string) string {
	return strings.Replace(s, "EModTier_", "", 1)
}

// shopAttrGroup maps a shop stat display group. Not used by any output yet.
func shopAttrGroup(s string) string { return lookup(shopAttrGroups, s) }

// attrLabel holds the localisation keys of a stat label and its postfix.
type attrLabel struct {
	Label   string `json:"label"`
	Postfix string `json:"postfix"`
}

// attrLabels returns the stats whose labels do not follow the generic naming.
func attrLabels() map[string]attrLabel {
	out := make(map[string]attrLabel)
	for _, stat := range []string{"BulletDamage", "MaxHealth", "BaseHealthRegen", "MaxMoveSpeed", "WeaponPower"} {
		out[stat] = attrLabel{
			Label:   "StatDesc_" + stat,
			Postfix: "StatDesc_" + stat + "_postfix",
		}
	}
	return out
}
