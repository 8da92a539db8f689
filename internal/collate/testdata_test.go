package collate

import (
	"strings"
	"testing"

	"vdata-pipeline/internal/localisation"
	"vdata-pipeline/internal/vdata"
)

const heroesScript = `<!-- kv3 encoding:text:version{e21c7f3c-8a33-41c5-9977-a76d3a32aa0d} -->
{
	generic_data_type = "CitadelHeroData"
	hero_astro =
	{
		m_HeroID = 5
		m_bNewPlayerFriendly = true
		m_mapStartingStats =
		{
			EMaxMoveSpeed = 7.2
			EMaxHealth = 550
		}
		m_mapBoundAbilities =
		{
			ESlot_Signature_1 = "ability_astro_one"
			ESlot_Signature_2 = "ability_astro_two"
			ESlot_Weapon_Primary = "citadel_weapon_astro"
		}
		m_mapStandardLevelUpUpgrades =
		{
			MODIFIER_VALUE_BASE_HEALTH_FROM_LEVEL = 25
		}
	}
	hero_broken =
	{
		m_HeroID = 6
	}
}
`

const abilitiesScript = `<!-- kv3 encoding:text:version{e21c7f3c-8a33-41c5-9977-a76d3a32aa0d} -->
{
	ability_astro_one =
	{
		m_AbilityName = "#citadel_ability_astro_one"
		m_eAbilityType = "EAbilityType_Signature"
		m_mapAbilityProperties =
		{
			AbilityCooldown =
			{
				m_strValue = "12.5"
			}
			AbilityCharges =
			{
				m_strValue = "2"
			}
			TechDamage =
			{
				m_strValue = "80"
				m_subclassScaleFunction =
				{
					m_flStatScale = 1.2
					m_eSpecificStatScaleType = "ETechPower"
				}
			}
		}
		m_mapScalingStats =
		{
			TechDamage =
			{
				eScalingStat = "ETechPower"
				flScale = 1.2
			}
		}
		m_AbilityTooltipDetails =
		{
			m_vecAbilityInfoSections =
			[
				{
					m_strLocString = "#astro_one_desc"
					m_vecAbilityPropertiesBlock =
					[
						{
							m_vecAbilityProperties =
							[
								{
									m_strImportantProperty = "TechDamage"
									m_bRequiresAbilityUpgrade = true
								},
							]
						},
					]
				},
			]
		}
		m_vecAbilityUpgrades =
		[
			{
				m_vecPropertyUpgrades =
				[
					{
						m_strPropertyName = "TechDamage"
						m_strBonus = "40"
					},
				]
			},
		]
	}
	upgrade_headshot_booster =
	{
		m_eAbilityType = "EAbilityType_Item"
		m_iItemTier = "EModTier_1"
		m_eAbilityActivation = "CITADEL_ABILITY_ACTIVATION_PASSIVE"
		m_eItemSlotType = "EItemSlotType_WeaponMod"
		m_nAbilityTargetTypes = "CITADEL_UNIT_TARGET_HERO_ENEMY | CITADEL_UNIT_TARGET_TROOPER_ENEMY"
		m_eShopFilters = "EShopFilter_Weapon"
		m_bDisabled = false
		m_mapAbilityProperties =
		{
			HeadShotBonusDamage =
			{
				m_strValue = "40"
			}
			AbilityCooldown =
			{
				m_strValue = "7.5"
			}
		}
	}
	upgrade_broken =
	{
		m_eAbilityType = "EAbilityType_Item"
		m_bDisabled = "maybe"
	}
	upgrade_hidden =
	{
		m_eAbilityType = "EAbilityType_Item"
		m_iItemTier = "EModTier_9"
		m_bDisabled = true
		m_vecComponentItems =
		[
			"upgrade_headshot_booster",
		]
	}
}
`

const genericScript = `{
	m_nItemPricePerTier =
	[
		0,
		500,
		1250,
	]
}
`

func parseScript(t *testing.T, src string) vdata.Value {
	t.Helper()
	return vdata.Parse(strings.Split(src, "\n"))
}

func table(pairs ...string) *localisation.Table {
	t := localisation.NewTable()
	for i := 0; i+1 < len(pairs); i += 2 {
		t.Set(pairs[i], pairs[i+1])
	}
	return t
}

// fixtureSources returns a complete set of collation inputs.
func fixtureSources(t *testing.T) *Sources {
	t.Helper()
	src := NewSources()
	src.Scripts[ScriptHeroes] = parseScript(t, heroesScript)
	src.Scripts[ScriptAbilities] = parseScript(t, abilitiesScript)
	src.Scripts[ScriptGenericData] = parseScript(t, genericScript)
	src.Localisation[TableHeroes] = table("hero_astro", "Holliday")
	src.Localisation[TableMods] = table(
		"upgrade_headshot_booster", "Headshot Booster",
		"upgrade_headshot_booster_desc", "Deal {head_shot_bonus_damage} bonus damage. Press %ability1% or {unknown}.",
	)
	src.Localisation[TableGC] = table(
		"astro_one_desc", `Line one\nLine two`,
		"TechDamage_label", "Damage",
	)
	return src
}
