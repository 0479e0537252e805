package keywords

// Weights: 3 marks life-threatening phrases, 2 strong indicators, 1 context.
var defaultCategories = []Category{
	{
		Name: "medical",
		Keywords: []Keyword{
			{"heart attack", 3}, {"not breathing", 3}, {"unconscious", 3}, {"stroke", 3},
			{"overdose", 3}, {"choking", 3}, {"seizure", 3},
			{"chest pain", 2}, {"bleeding", 2}, {"breathing problem", 2}, {"allergic reaction", 2},
			{"poisoning", 2}, {"pregnancy emergency", 2}, {"ambulance", 2},
			{"broken bone", 1}, {"injured", 1}, {"accident", 1}, {"diabetic", 1}, {"burn", 1}, {"pain", 1},
		},
	},
	{
		Name: "fire",
		Keywords: []Keyword{
			{"fire", 3}, {"explosion", 3}, {"gas leak", 3},
			{"smoke", 2}, {"flames", 2}, {"burning", 2}, {"wildfire", 2},
			{"evacuation", 1}, {"smoke alarm", 1},
		},
	},
	{
		Name: "earthquake",
		Keywords: []Keyword{
			{"earthquake", 3}, {"building collapse", 3},
			{"trapped", 2}, {"aftershock", 2}, {"tremor", 2}, {"landslide", 2}, {"structural damage", 2},
			{"seismic", 1}, {"debris", 1}, {"shaking", 1},
		},
	},
	{
		Name: "flood",
		Keywords: []Keyword{
			{"drowning", 3}, {"flash flood", 3}, {"tsunami", 3}, {"dam break", 3},
			{"flood", 2}, {"rising water", 2}, {"storm surge", 2}, {"water rescue", 2},
			{"river overflow", 1}, {"basement flooding", 1},
		},
	},
	{
		Name: "cyclone",
		Keywords: []Keyword{
			{"tornado", 3}, {"hurricane", 3}, {"cyclone", 3}, {"typhoon", 3},
			{"severe weather", 2}, {"roof damage", 2},
			{"storm", 1}, {"hail", 1}, {"lightning", 1}, {"power outage", 1}, {"tree down", 1},
		},
	},
	{
		Name: "crime",
		Keywords: []Keyword{
			{"kidnapping", 3}, {"assault", 3}, {"shooting", 3}, {"domestic violence", 3},
			{"robbery", 2}, {"break in", 2}, {"violence", 2}, {"stalking", 2},
			{"theft", 1}, {"suspicious person", 1}, {"harassment", 1}, {"threat", 1},
		},
	},
	{
		Name: "distress",
		Keywords: []Keyword{
			{"help", 3}, {"emergency", 3}, {"urgent", 3}, {"trapped", 3}, {"sos", 3},
			{"rescue", 2}, {"danger", 2}, {"call police", 2}, {"call ambulance", 2},
			{"stranded", 1}, {"panic", 1}, {"scared", 1}, {"need assistance", 1},
		},
	},
}

var defaultTable = MustNew(defaultCategories)

// Default returns the built-in keyword table. The returned table is shared
// and read-only.
func Default() *Table {
	return defaultTable
}
