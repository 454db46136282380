package templates

const defaultCharacterSheet = `# Unnamed Adventurer

## Attributes
- Strength: 10
- Dexterity: 10
- Intelligence: 10

## Inventory
- (empty)

## Notes
(The GM fills this in as the story develops.)
`

const defaultCharacterState = `# Current State

## Status
Healthy, ready to begin.

## Relationships
(none yet)

## Goals
(none yet)
`

const defaultWorldState = `# Unnamed World

## Overview
A world waiting to be described.

## Current Era
Unknown.
`

const defaultLocations = `# Locations

(No locations recorded yet.)
`

const defaultWorldCharacters = `# Characters

(No notable characters recorded yet.)
`

const defaultQuests = `# Quests

## Active
(none)

## Completed
(none)
`

const defaultArtStyle = `# Art Style

Default: painterly fantasy illustration.
`
