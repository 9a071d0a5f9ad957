// internal/catalog/data.go
//
// Static content for Hero of Habits: six aliens, five villains and four
// levels of three missions each. Nothing here is mutated at runtime; the
// exported accessors in catalog.go hand out copies.

package catalog

// Alien ids referenced by the level/villain tables.
const (
	AlienHeatblast   = "heatblast"
	AlienFourArms    = "four-arms"
	AlienXLR8        = "xlr8"
	AlienGreyMatter  = "grey-matter"
	AlienUpgrade     = "upgrade"
	AlienDiamondhead = "diamondhead"
)

// Mini-game tags understood by the minigame package.
const (
	GameCleaning      = "cleaning-game"
	GameSorting       = "sorting-game"
	GameHelping       = "helping-game"
	GameTimeChallenge = "time-challenge"
	GameQuiz          = "quiz-game"
	GamePlanting      = "planting-game"
	GamePuzzle        = "puzzle-game"
	GameTraffic       = "traffic-game"
)

// MaxStars is the star ceiling for every mission.
const MaxStars = 3

var aliens = []Alien{
	{ID: AlienHeatblast, Name: "Heatblast", Power: "Clean Fire", Habit: "Cleanliness & Hygiene", Color: "#FF6B35"},
	{ID: AlienFourArms, Name: "Four Arms", Power: "Strength", Habit: "Helping Elders & Teamwork", Color: "#C1121F"},
	{ID: AlienXLR8, Name: "XLR8", Power: "Speed", Habit: "Time Management & Punctuality", Color: "#4361EE", UnlockLevel: 1},
	{ID: AlienGreyMatter, Name: "Grey Matter", Power: "Intelligence", Habit: "Studying & Problem-Solving", Color: "#6A994E", UnlockLevel: 2},
	{ID: AlienUpgrade, Name: "Upgrade", Power: "Repair", Habit: "Saving Resources & Recycling", Color: "#023047", UnlockLevel: 3},
	{ID: AlienDiamondhead, Name: "Diamondhead", Power: "Protection", Habit: "Honesty & Integrity", Color: "#06FFA5", UnlockLevel: 4},
}

var villains = []Villain{
	{ID: "lazytron", Name: "Lazytron", Represents: "Laziness", WeakAgainst: []string{AlienHeatblast, AlienFourArms}, Difficulty: 1},
	{ID: "trash-king", Name: "Trash King", Represents: "Pollution", WeakAgainst: []string{AlienHeatblast, AlienUpgrade}, Difficulty: 3},
	{ID: "time-thief", Name: "Time Thief", Represents: "Wasting Time", WeakAgainst: []string{AlienXLR8}, Difficulty: 2},
	{ID: "bully-beast", Name: "Bully Beast", Represents: "Bullying", WeakAgainst: []string{AlienFourArms, AlienDiamondhead}, Difficulty: 2},
	{ID: "greed-lord", Name: "Greed Lord", Represents: "Selfishness", WeakAgainst: []string{AlienGreyMatter, AlienDiamondhead}, Difficulty: 4},
}

var levels = []Level{
	{
		ID:          1,
		Title:       "Home Responsibility",
		Description: "Learn good habits at home",
		Environment: "home",
		Missions: []Mission{
			{ID: "home-brush-teeth", LevelID: 1, Title: "Morning Routine Hero", Description: "Help Ben brush his teeth properly!", Objective: "Complete the brushing sequence correctly", MiniGame: GameCleaning, RequiredAlien: AlienHeatblast, Difficulty: 1, MaxStars: MaxStars},
			{ID: "home-clean-room", LevelID: 1, Title: "Room Cleanup Champion", Description: "Clean and organize the messy room", Objective: "Sort all items into correct places", MiniGame: GameSorting, RequiredAlien: AlienHeatblast, Difficulty: 1, MaxStars: MaxStars},
			{ID: "home-help-parents", LevelID: 1, Title: "Family Helper", Description: "Help parents with household chores", Objective: "Complete 3 helping tasks", MiniGame: GameHelping, RequiredAlien: AlienFourArms, Difficulty: 1, MaxStars: MaxStars},
		},
		Boss:              villains[0],
		Badge:             "Habit Badge",
		UnlockRequirement: 0,
	},
	{
		ID:          2,
		Title:       "School Hero",
		Description: "Be a responsible student",
		Environment: "school",
		Missions: []Mission{
			{ID: "school-punctuality", LevelID: 2, Title: "Beat the Clock", Description: "Get to class on time!", Objective: "Complete morning routine within time limit", MiniGame: GameTimeChallenge, RequiredAlien: AlienXLR8, Difficulty: 2, MaxStars: MaxStars},
			{ID: "school-respect", LevelID: 2, Title: "Respect & Learn", Description: "Show respect to teachers and classmates", Objective: "Make correct respectful choices", MiniGame: GameQuiz, RequiredAlien: AlienGreyMatter, Difficulty: 2, MaxStars: MaxStars},
			{ID: "school-anti-bullying", LevelID: 2, Title: "Stop the Bully", Description: "Stand up against bullying", Objective: "Help victims and promote kindness", MiniGame: GameHelping, RequiredAlien: AlienFourArms, Difficulty: 2, MaxStars: MaxStars},
		},
		Boss:              villains[3],
		Badge:             "Knowledge Badge",
		UnlockRequirement: 1,
	},
	{
		ID:          3,
		Title:       "Society & Environment",
		Description: "Protect our planet",
		Environment: "park",
		Missions: []Mission{
			{ID: "env-plant-trees", LevelID: 3, Title: "Green Warrior", Description: "Plant trees to save the environment", Objective: "Plant and water 5 trees correctly", MiniGame: GamePlanting, RequiredAlien: AlienFourArms, Difficulty: 2, MaxStars: MaxStars},
			{ID: "env-clean-park", LevelID: 3, Title: "Park Cleanup Mission", Description: "Clean up litter from the park", Objective: "Collect and sort all trash", MiniGame: GameSorting, RequiredAlien: AlienUpgrade, Difficulty: 2, MaxStars: MaxStars},
			{ID: "env-save-water", LevelID: 3, Title: "Water Conservation", Description: "Learn to save water", Objective: "Fix leaks and make smart choices", MiniGame: GamePuzzle, RequiredAlien: AlienUpgrade, Difficulty: 3, MaxStars: MaxStars},
		},
		Boss:              villains[1],
		Badge:             "Green Hero Badge",
		UnlockRequirement: 2,
	},
	{
		ID:          4,
		Title:       "Road & Safety",
		Description: "Stay safe in the city",
		Environment: "city",
		Missions: []Mission{
			{ID: "safety-traffic", LevelID: 4, Title: "Traffic Safety Hero", Description: "Follow traffic rules correctly", Objective: "Navigate safely through traffic", MiniGame: GameTraffic, RequiredAlien: AlienXLR8, Difficulty: 3, MaxStars: MaxStars},
			{ID: "safety-help-injured", LevelID: 4, Title: "First Responder", Description: "Help injured people safely", Objective: "Provide correct first aid", MiniGame: GameHelping, RequiredAlien: AlienFourArms, Difficulty: 3, MaxStars: MaxStars},
			{ID: "safety-emergency", LevelID: 4, Title: "Emergency Response", Description: "Handle emergency situations", Objective: "Make quick, smart decisions", MiniGame: GameQuiz, RequiredAlien: AlienGreyMatter, Difficulty: 3, MaxStars: MaxStars},
		},
		Boss:              villains[2],
		Badge:             "Safety Shield",
		UnlockRequirement: 3,
	},
}
