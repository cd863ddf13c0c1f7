package categorize

// DefaultRules is the built-in keyword table. Weights reflect how specific
// a keyword is: brand names score higher than generic terms.
func DefaultRules() []Rule {
	return []Rule{
		// Groceries
		{Category: "groceries", Keyword: "whole foods", Weight: 0.85},
		{Category: "groceries", Keyword: "trader joe", Weight: 0.85},
		{Category: "groceries", Keyword: "aldi", Weight: 0.85},
		{Category: "groceries", Keyword: "lidl", Weight: 0.85},
		{Category: "groceries", Keyword: "continente", Weight: 0.85},
		{Category: "groceries", Keyword: "pingo doce", Weight: 0.85},
		{Category: "groceries", Keyword: "mercadona", Weight: 0.85},
		{Category: "groceries", Keyword: "carrefour", Weight: 0.8},
		{Category: "groceries", Keyword: "supermarket", Weight: 0.7},
		{Category: "groceries", Keyword: "supermercado", Weight: 0.7},
		{Category: "groceries", Keyword: "grocery", Weight: 0.7},
		{Category: "groceries", Keyword: "market", Weight: 0.45},

		// Dining
		{Category: "dining", Keyword: "mcdonald", Weight: 0.85},
		{Category: "dining", Keyword: "burger king", Weight: 0.85},
		{Category: "dining", Keyword: "starbucks", Weight: 0.85},
		{Category: "dining", Keyword: "uber eats", Weight: 0.85},
		{Category: "dining", Keyword: "deliveroo", Weight: 0.85},
		{Category: "dining", Keyword: "glovo", Weight: 0.85},
		{Category: "dining", Keyword: "restaurant", Weight: 0.75},
		{Category: "dining", Keyword: "restaurante", Weight: 0.75},
		{Category: "dining", Keyword: "pizzeria", Weight: 0.75},
		{Category: "dining", Keyword: "cafe", Weight: 0.6},
		{Category: "dining", Keyword: "coffee", Weight: 0.6},
		{Category: "dining", Keyword: "bar", Weight: 0.4},

		// Transport
		{Category: "transport", Keyword: "uber", Weight: 0.7},
		{Category: "transport", Keyword: "lyft", Weight: 0.85},
		{Category: "transport", Keyword: "bolt", Weight: 0.7},
		{Category: "transport", Keyword: "metro", Weight: 0.6},
		{Category: "transport", Keyword: "parking", Weight: 0.7},
		{Category: "transport", Keyword: "toll", Weight: 0.6},
		{Category: "transport", Keyword: "taxi", Weight: 0.75},

		// Fuel
		{Category: "fuel", Keyword: "shell", Weight: 0.8},
		{Category: "fuel", Keyword: "galp", Weight: 0.8},
		{Category: "fuel", Keyword: "repsol", Weight: 0.8},
		{Category: "fuel", Keyword: "petrol", Weight: 0.75},
		{Category: "fuel", Keyword: "gasolina", Weight: 0.75},
		{Category: "fuel", Keyword: "fuel", Weight: 0.7},

		// Utilities
		{Category: "utilities", Keyword: "electric", Weight: 0.75},
		{Category: "utilities", Keyword: "edp", Weight: 0.8},
		{Category: "utilities", Keyword: "vodafone", Weight: 0.8},
		{Category: "utilities", Keyword: "water", Weight: 0.5},
		{Category: "utilities", Keyword: "internet", Weight: 0.65},
		{Category: "utilities", Keyword: "energia", Weight: 0.7},

		// Housing
		{Category: "housing", Keyword: "rent", Weight: 0.7},
		{Category: "housing", Keyword: "renda", Weight: 0.7},
		{Category: "housing", Keyword: "mortgage", Weight: 0.8},
		{Category: "housing", Keyword: "condominio", Weight: 0.75},

		// Entertainment & subscriptions
		{Category: "entertainment", Keyword: "netflix", Weight: 0.9},
		{Category: "entertainment", Keyword: "spotify", Weight: 0.9},
		{Category: "entertainment", Keyword: "cinema", Weight: 0.8},
		{Category: "entertainment", Keyword: "steam", Weight: 0.7},
		{Category: "entertainment", Keyword: "disney", Weight: 0.75},

		// Shopping
		{Category: "shopping", Keyword: "amazon", Weight: 0.75},
		{Category: "shopping", Keyword: "ikea", Weight: 0.8},
		{Category: "shopping", Keyword: "zara", Weight: 0.8},
		{Category: "shopping", Keyword: "fnac", Weight: 0.8},
		{Category: "shopping", Keyword: "decathlon", Weight: 0.8},

		// Travel
		{Category: "travel", Keyword: "airbnb", Weight: 0.85},
		{Category: "travel", Keyword: "booking com", Weight: 0.85},
		{Category: "travel", Keyword: "ryanair", Weight: 0.85},
		{Category: "travel", Keyword: "easyjet", Weight: 0.85},
		{Category: "travel", Keyword: "tap portugal", Weight: 0.85},
		{Category: "travel", Keyword: "hotel", Weight: 0.7},

		// Health
		{Category: "health", Keyword: "pharmacy", Weight: 0.8},
		{Category: "health", Keyword: "farmacia", Weight: 0.8},
		{Category: "health", Keyword: "clinic", Weight: 0.7},
		{Category: "health", Keyword: "hospital", Weight: 0.75},
		{Category: "health", Keyword: "dental", Weight: 0.75},

		// Fees
		{Category: "fees", Keyword: "bank fee", Weight: 0.8},
		{Category: "fees", Keyword: "comissao", Weight: 0.7},
		{Category: "fees", Keyword: "service charge", Weight: 0.75},
		{Category: "fees", Keyword: "atm", Weight: 0.6},
	}
}
