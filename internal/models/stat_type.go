package models

import (
	"fmt"
	"strings"
)

// StatField identifies a single numeric column of a box score line
type StatField string

// Box score fields carried by a GameStatRecord
const (
	FieldPoints     StatField = "points"
	FieldRebounds   StatField = "totReb"
	FieldAssists    StatField = "assists"
	FieldBlocks     StatField = "blocks"
	FieldSteals     StatField = "steals"
	FieldTurnovers  StatField = "turnovers"
	FieldThreesMade StatField = "tpm"
)

// StatType is the closed vocabulary of prop stat types
type StatType string

// Supported stat types
const (
	StatPoints          StatType = "Points"
	StatRebounds        StatType = "Rebounds"
	StatAssists         StatType = "Assists"
	StatBlocks          StatType = "Blocks"
	StatSteals          StatType = "Steals"
	StatTurnovers       StatType = "Turnovers"
	StatThreesMade      StatType = "3-PT Made"
	StatPtsRebs         StatType = "Pts+Rebs"
	StatPtsAsts         StatType = "Pts+Asts"
	StatRebsAsts        StatType = "Rebs+Asts"
	StatPtsRebsAsts     StatType = "Pts+Rebs+Asts"
	StatBlocksAndSteals StatType = "Blks+Stls"
)

var statFields = map[StatType][]StatField{
	StatPoints:          {FieldPoints},
	StatRebounds:        {FieldRebounds},
	StatAssists:         {FieldAssists},
	StatBlocks:          {FieldBlocks},
	StatSteals:          {FieldSteals},
	StatTurnovers:       {FieldTurnovers},
	StatThreesMade:      {FieldThreesMade},
	StatPtsRebs:         {FieldPoints, FieldRebounds},
	StatPtsAsts:         {FieldPoints, FieldAssists},
	StatRebsAsts:        {FieldRebounds, FieldAssists},
	StatPtsRebsAsts:     {FieldPoints, FieldRebounds, FieldAssists},
	StatBlocksAndSteals: {FieldBlocks, FieldSteals},
}

// provider spellings that name an existing stat type
var statAliases = map[string]StatType{
	"Blocked Shots": StatBlocks,
}

// ParseStatType resolves a provider stat type label. Labels outside the
// vocabulary (e.g. "Fantasy Score") return ErrUnknownStatType.
func ParseStatType(label string) (StatType, error) {
	label = strings.TrimSpace(label)
	if alias, ok := statAliases[label]; ok {
		return alias, nil
	}
	st := StatType(label)
	if _, ok := statFields[st]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownStatType, label)
	}
	return st, nil
}

// Fields returns the box score fields summed to produce the stat
func (s StatType) Fields() []StatField {
	return statFields[s]
}

// IsComposite reports whether the stat sums more than one field
func (s StatType) IsComposite() bool {
	return len(statFields[s]) > 1
}

// IsValid checks if the stat type is part of the vocabulary
func (s StatType) IsValid() bool {
	_, ok := statFields[s]
	return ok
}

// SupportedStatTypes lists every stat type in a stable order
func SupportedStatTypes() []StatType {
	return []StatType{
		StatPoints, StatRebounds, StatAssists, StatBlocks, StatSteals, StatTurnovers,
		StatThreesMade, StatPtsRebs, StatPtsAsts, StatRebsAsts, StatPtsRebsAsts, StatBlocksAndSteals,
	}
}
