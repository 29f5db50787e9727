package pokemon

// relations lists, for one defending type, the attacking types that deal
// double damage to it, the ones it resists, and the ones it is immune to.
//
// Invariant: the three lists are disjoint.
type relations struct {
	superEffective []Type
	notEffective   []Type
	immune         []Type
}

// chart is the defensive type chart, total over all 18 types.
var chart = [numTypes]relations{
	Normal: {
		superEffective: []Type{Fighting},
		immune:         []Type{Ghost},
	},
	Fire: {
		superEffective: []Type{Water, Ground, Rock},
		notEffective:   []Type{Fire, Grass, Ice, Bug, Steel, Fairy},
	},
	Water: {
		superEffective: []Type{Electric, Grass},
		notEffective:   []Type{Fire, Water, Ice, Steel},
	},
	Electric: {
		superEffective: []Type{Ground},
		notEffective:   []Type{Electric, Flying, Steel},
	},
	Grass: {
		superEffective: []Type{Fire, Ice, Poison, Flying, Bug},
		notEffective:   []Type{Water, Electric, Grass, Ground},
	},
	Ice: {
		superEffective: []Type{Fire, Fighting, Rock, Steel},
		notEffective:   []Type{Ice},
	},
	Fighting: {
		superEffective: []Type{Flying, Psychic, Fairy},
		notEffective:   []Type{Bug, Rock, Dark},
	},
	Poison: {
		superEffective: []Type{Ground, Psychic},
		notEffective:   []Type{Grass, Fighting, Poison, Bug, Fairy},
	},
	Ground: {
		superEffective: []Type{Water, Grass, Ice},
		notEffective:   []Type{Poison, Rock},
		immune:         []Type{Electric},
	},
	Flying: {
		superEffective: []Type{Electric, Ice, Rock},
		notEffective:   []Type{Grass, Fighting, Bug},
		immune:         []Type{Ground},
	},
	Psychic: {
		superEffective: []Type{Bug, Ghost, Dark},
		notEffective:   []Type{Fighting, Psychic},
	},
	Bug: {
		superEffective: []Type{Fire, Flying, Rock},
		notEffective:   []Type{Grass, Fighting, Ground},
	},
	Rock: {
		superEffective: []Type{Water, Grass, Fighting, Ground, Steel},
		notEffective:   []Type{Normal, Fire, Poison, Flying},
	},
	Ghost: {
		superEffective: []Type{Ghost, Dark},
		notEffective:   []Type{Poison, Bug},
		immune:         []Type{Normal, Fighting},
	},
	Dragon: {
		superEffective: []Type{Ice, Dragon, Fairy},
		notEffective:   []Type{Fire, Water, Electric, Grass},
	},
	Dark: {
		superEffective: []Type{Fighting, Bug, Fairy},
		notEffective:   []Type{Ghost, Dark},
		immune:         []Type{Psychic},
	},
	Steel: {
		superEffective: []Type{Fire, Fighting, Ground},
		notEffective:   []Type{Normal, Grass, Ice, Flying, Psychic, Bug, Rock, Dragon, Steel, Fairy},
		immune:         []Type{Poison},
	},
	Fairy: {
		superEffective: []Type{Poison, Steel},
		notEffective:   []Type{Fighting, Bug, Dark},
		immune:         []Type{Dragon},
	},
}
