package scenario

// Starting scenarios, inspired by popular campaigns and classic fantasy tropes.
var startingScenarios = []Scenario{
	{
		ID:         "goblin-ambush",
		Name:       "Goblin Ambush",
		Location:   "Triboar Trail",
		TimeOfDay:  Day,
		Opening:    "Welcome, {name} the {class}. You're traveling along the Triboar Trail when arrows suddenly whistle from the treeline. Goblins! Your hand moves to your weapon as shadows dart between the trees. What do you do?",
		Atmosphere: "Forest road under attack, inspired by Lost Mine of Phandelver. Immediate danger, combat likely.",
	},
	{
		ID:         "mysterious-mist",
		Name:       "The Mists",
		Location:   "Edge of Barovia",
		TimeOfDay:  Dusk,
		Opening:    "Greetings, {name} the {class}. Thick, unnatural fog surrounds you on all sides. When it finally clears, the land looks... different. The trees are twisted, the sky gray. A gothic castle looms on a distant hill. Where are you?",
		Atmosphere: "Gothic horror setting inspired by Curse of Strahd. Mysterious, ominous, otherworldly.",
	},
	{
		ID:         "tavern-trouble",
		Name:       "Tavern Trouble",
		Location:   "The Prancing Pony Inn",
		TimeOfDay:  Night,
		Opening:    "Well met, {name} the {class}. You're enjoying ale at the Prancing Pony when heated voices escalate at a nearby table. Steel rings as swords are drawn. The innkeeper ducks behind the bar. What do you do?",
		Atmosphere: "Classic D&D tavern brawl. Urban setting, social encounter turning violent.",
	},
	{
		ID:         "shipwreck",
		Name:       "Shipwreck Shore",
		Location:   "Wreckage Beach",
		TimeOfDay:  Dawn,
		Opening:    "{name} the {class}, you wake on a sandy beach, lungs burning with saltwater. Splintered wood and torn sails litter the shore. Your ship... the storm... You're alive, but stranded. What's your first move?",
		Atmosphere: "Shipwreck survival scenario inspired by Ghosts of Saltmarsh. Isolation, mystery, exploration.",
	},
	{
		ID:         "jungle-tomb",
		Name:       "Jungle Tomb",
		Location:   "Ancient Chultan Ruins",
		TimeOfDay:  Day,
		Opening:    "{name} the {class}, thick jungle vines part to reveal weathered stone steps descending into darkness. Ancient glyphs cover the entrance. This tomb has been sealed for centuries... until now. Do you descend?",
		Atmosphere: "Jungle exploration inspired by Tomb of Annihilation. Ancient mysteries, traps, undead.",
	},
	{
		ID:         "city-siege",
		Name:       "City Under Siege",
		Location:   "Elturel Gates",
		TimeOfDay:  Dusk,
		Opening:    "Attention, {name} the {class}! Screams echo through the streets as demonic forces breach the city walls. Fire spreads. Citizens flee in terror. A captain shouts for able fighters. This is your moment. What do you do?",
		Atmosphere: "Epic siege inspired by Descent into Avernus. Chaos, heroism, demonic threat.",
	},
	{
		ID:         "frozen-outpost",
		Name:       "Frozen Outpost",
		Location:   "Bryn Shander",
		TimeOfDay:  Night,
		Opening:    "{name} the {class}, the blizzard howls outside. The inn's warmth fades as something scratches at the door—too deliberate to be the wind. The other patrons fall silent, hands moving to weapons. What do you do?",
		Atmosphere: "Icewind Dale-inspired frozen horror. Survival, mystery, cold climate danger.",
	},
	{
		ID:         "market-chase",
		Name:       "Market Chase",
		Location:   "Waterdeep Marketplace",
		TimeOfDay:  Day,
		Opening:    "{name} the {class}, a hooded figure collides with you in the bustling marketplace, dropping a leather-wrapped package before fleeing. City guards shout and give chase. The package pulses with strange energy. What do you do?",
		Atmosphere: "Urban intrigue inspired by Waterdeep: Dragon Heist. Mystery, chase, treasure.",
	},
	{
		ID:         "dragon-sighting",
		Name:       "Dragon Attack",
		Location:   "Mountain Village",
		TimeOfDay:  Day,
		Opening:    "Beware, {name} the {class}! A massive shadow crosses the sun. Leathery wings beat overhead as a dragon circles the village. Villagers scatter, screaming. The beast descends toward the town square. What do you do?",
		Atmosphere: "Classic dragon encounter. Epic fantasy, immediate danger, heroic opportunity.",
	},
	{
		ID:         "prison-break",
		Name:       "The Pit",
		Location:   "Underground Cells",
		TimeOfDay:  Night,
		Opening:    "{name} the {class}, you wake in darkness. Chains rattle. Stone walls press close. You don't remember how you got here, but you hear guards approaching. This might be your only chance to escape. What do you do?",
		Atmosphere: "Dark opening, mystery. Prison break scenario, player must escape and uncover why they were captured.",
	},
	{
		ID:         "caravan-defenders",
		Name:       "Caravan Guard",
		Location:   "Trade Road",
		TimeOfDay:  Day,
		Opening:    "{name} the {class}, you've been hired to guard a merchant caravan. Three days into the journey, the lead wagon's horse whinnies in alarm. Tracks cross the road—large, clawed, recent. The merchant looks to you nervously. What do you do?",
		Atmosphere: "Escort mission, classic D&D. Travel, investigation, potential combat with monsters.",
	},
	{
		ID:         "festival-chaos",
		Name:       "Festival of Chaos",
		Location:   "Neverwinter Square",
		TimeOfDay:  Night,
		Opening:    "{name} the {class}, the Harvest Festival is in full swing—music, dancing, fireworks! Then the explosions turn real. Screams replace laughter as masked figures emerge from the crowd, weapons drawn. What do you do?",
		Atmosphere: "Celebration turned attack. Urban combat, investigation, conspiracy.",
	},
}
