// Package export writes collated data as spreadsheets.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"vdata-pipeline/internal/collate"
	"vdata-pipeline/internal/vdata"

	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"
)

const (
	// Dir is the output subdirectory for spreadsheets.
	Dir        = "exports"
	ItemsFile  = "items.xlsx"
	HeroesFile = "heroes.xlsx"
)

const (
	itemsSheet    = "Items"
	heroesSheet   = "Heroes"
	levelUpsSheet = "Level Upgrades"
)

var itemHeader = []any{
	"Key", "Name", "Tier", "Cost", "Slot", "Activation",
	"Target Types", "Shop Filters", "Components", "Disabled", "Description",
}

// heroStatColumns are the starting stats exported per hero, in column order.
var heroStatColumns = []string{
	"EMaxMoveSpeed", "ESprintSpeed", "ECrouchSpeed", "EMoveAcceleration",
	"ELightMeleeDamage", "EHeavyMeleeDamage", "EMaxHealth", "EWeaponPower",
	"EReloadSpeed", "EWeaponPowerScale", "EStamina", "EBaseHealthRegen",
	"EStaminaRegenPerSecond",
}

// Items writes one row per item to a single-sheet workbook at path.
func Items(path string, items *collate.Collection[*collate.Item]) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", itemsSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	rows := make([][]any, 0, items.Len())
	for _, key := range items.Keys() {
		it, _ := items.Get(key)
		tier := ""
		if it.Tier != nil {
			tier = *it.Tier
		}
		desc := ""
		if it.Description != nil {
			desc = *it.Description
		}
		rows = append(rows, []any{
			key, it.Name, tier, it.Cost, it.Slot, it.Activation,
			strings.Join(it.TargetTypes, ", "),
			strings.Join(it.ShopFilters, ", "),
			joinValues(it.Components),
			it.Disabled,
			desc,
		})
	}

	if err := writeSheet(f, itemsSheet, itemHeader, rows); err != nil {
		return err
	}
	return save(f, path, len(rows))
}

// Heroes writes a Heroes sheet with the starting stats and a Level Upgrades
// sheet with one row per hero and modifier.
func Heroes(path string, heroes *collate.Collection[*collate.Hero]) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", heroesSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(levelUpsSheet); err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}

	header := []any{"Key", "ID", "Name", "New Player Friendly"}
	for _, stat := range heroStatColumns {
		header = append(header, collate.HeroAttr(stat))
	}

	var rows, levelRows [][]any
	for _, key := range heroes.Keys() {
		h, _ := heroes.Get(key)
		row := []any{key, cellValue(h.ID), h.Name, h.NewPlayerFriendly}
		row = append(row, statCells(h.StartingStats)...)
		rows = append(rows, row)

		h.LevelUpgrades.Each(func(mod string, v vdata.Value) bool {
			levelRows = append(levelRows, []any{key, collate.LevelMod(strings.ToUpper(mod)), cellValue(v)})
			return true
		})
	}

	if err := writeSheet(f, heroesSheet, header, rows); err != nil {
		return err
	}
	if err := writeSheet(f, levelUpsSheet, []any{"Hero", "Modifier", "Value"}, levelRows); err != nil {
		return err
	}
	return save(f, path, len(rows))
}

func statCells(s collate.StartingStats) []any {
	return []any{
		cellValue(s.MaxMoveSpeed), cellValue(s.SprintSpeed), cellValue(s.CrouchSpeed),
		cellValue(s.MoveAcceleration), cellValue(s.LightMeleeDamage), cellValue(s.HeavyMeleeDamage),
		cellValue(s.MaxHealth), cellValue(s.WeaponPower), cellValue(s.ReloadSpeed),
		cellValue(s.WeaponPowerScale), cellValue(s.Stamina), cellValue(s.BaseHealthRegen),
		cellValue(s.StaminaRegenPerSecond),
	}
}

// writeSheet writes a bold header row followed by rows.
func writeSheet(f *excelize.File, sheet string, header []any, rows [][]any) error {
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write %s header: %w", sheet, err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}
	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, bold); err != nil {
		return fmt.Errorf("style %s header: %w", sheet, err)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+2, err)
		}
	}
	return nil
}

func save(f *excelize.File, path string, rows int) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save %s: %w", filepath.Base(path), err)
	}
	log.Info().Str("file", path).Int("rows", rows).Msg("Spreadsheet written")
	return nil
}

// cellValue converts a value to something a cell can hold. Containers are
// written as JSON text.
func cellValue(v vdata.Value) any {
	switch x := v.(type) {
	case nil:
		return nil
	case vdata.Number:
		return float64(x)
	case vdata.Bool:
		return bool(x)
	case vdata.String:
		return string(x)
	default:
		data, err := vdata.Marshal(v, "")
		if err != nil {
			return nil
		}
		return string(data)
	}
}

func joinValues(s *vdata.Sequence) string {
	parts := make([]string, 0, s.Len())
	for _, v := range s.Items() {
		if str, ok := vdata.AsString(v); ok {
			parts = append(parts, str)
		}
	}
	return strings.Join(parts, ", ")
}
