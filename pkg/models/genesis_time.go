package models

import "time"

// genesisTime matches the fixed constant the original implementation ships
// as its Block::new()/Default timestamp.
var genesisTime = time.Date(2022, time.April, 11, 20, 45, 0, 0, time.UTC)
