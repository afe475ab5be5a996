package lexicon

import "github.com/voicecart/backend/internal/domain"

// Builtin returns the languages shipped with the service: English, Spanish,
// French and romanized Hindi.
func Builtin() []Language {
	return []Language{english(), spanish(), french(), hindi()}
}

func english() Language {
	return Language{
		Code: "en",
		Keywords: map[domain.Intent][]string{
			domain.IntentAdd:    {"add", "buy", "get", "purchase", "put", "i want", "i need"},
			domain.IntentRemove: {"remove", "delete", "cancel", "drop", "take out"},
			domain.IntentSearch: {"find", "search", "show", "look for", "where is", "do you have", "tell me about"},
		},
		CartPhrases: map[domain.Intent][]string{
			domain.IntentViewCart: {
				"show cart", "show my cart", "show the cart", "view cart", "view my cart",
				"open cart", "open my cart", "check cart", "check my cart", "see my cart",
				"what s in my cart", "whats in my cart", "cart items",
			},
			domain.IntentClearCart: {
				"clear cart", "clear my cart", "clear the cart", "empty cart",
				"empty my cart", "empty the cart", "remove all", "delete all",
			},
		},
		NumberWords: map[string]int{
			"one": 1, "two": 2, "three": 3, "four": 4, "five": 5,
			"six": 6, "seven": 7, "eight": 8, "nine": 9, "ten": 10,
			"eleven": 11, "twelve": 12, "fifteen": 15, "twenty": 20,
			"single": 1, "couple": 2, "dozen": 12,
		},
		Fillers: []string{
			"a", "an", "the", "of", "to", "my", "from", "in", "into", "for", "me", "some",
			"please", "cart", "basket", "packet", "packets", "pack", "packs", "piece",
			"pieces", "bottle", "bottles", "bag", "bags", "kg", "kilo", "kilos", "liter",
			"liters", "litre", "litres", "units", "unit", "and",
		},
		Corrections: map[string]string{
			"kart": "cart", "kat": "cart", "cot": "cart", "caught": "cart",
			"ad": "add", "remov": "remove", "sho": "show",
			"aple": "apple", "aplle": "apple", "melk": "milk", "milke": "milk",
			"bred": "bread", "brd": "bread", "bannana": "banana", "banna": "banana",
			"tomatos": "tomato", "tomatoes": "tomato", "potatos": "potato", "potatoes": "potato",
			"apples": "apple", "bananas": "banana",
		},
	}
}

func spanish() Language {
	return Language{
		Code: "es",
		Keywords: map[domain.Intent][]string{
			domain.IntentAdd:    {"añadir", "añade", "agregar", "agrega", "comprar", "compra", "pon", "quiero", "necesito"},
			domain.IntentRemove: {"quitar", "quita", "eliminar", "elimina", "borrar", "borra", "saca"},
			domain.IntentSearch: {"buscar", "busca", "encuentra", "muestra", "mostrar", "tienes"},
		},
		CartPhrases: map[domain.Intent][]string{
			domain.IntentViewCart:  {"ver carrito", "ver mi carrito", "muestra mi carrito", "mostrar carrito", "mostrar mi carrito"},
			domain.IntentClearCart: {"vaciar carrito", "vaciar mi carrito", "vacia mi carrito", "vacía el carrito", "borrar todo"},
		},
		NumberWords: map[string]int{
			"un": 1, "uno": 1, "una": 1, "dos": 2, "tres": 3, "cuatro": 4, "cinco": 5,
			"seis": 6, "siete": 7, "ocho": 8, "nueve": 9, "diez": 10, "doce": 12,
			"docena": 12,
		},
		Fillers: []string{
			"de", "del", "el", "la", "los", "las", "mi", "al", "a", "en", "por", "favor",
			"carrito", "paquete", "paquetes", "botella", "botellas", "bolsa", "kilo", "kilos",
			"litro", "litros", "y",
		},
		Corrections: map[string]string{
			"carito": "carrito", "lece": "leche",
		},
	}
}

func french() Language {
	return Language{
		Code: "fr",
		Keywords: map[domain.Intent][]string{
			domain.IntentAdd:    {"ajouter", "ajoute", "ajoutez", "acheter", "achete", "je veux", "mets"},
			domain.IntentRemove: {"supprimer", "supprime", "enlever", "enleve", "retirer", "retire"},
			domain.IntentSearch: {"chercher", "cherche", "trouver", "trouve", "montre", "montrer"},
		},
		CartPhrases: map[domain.Intent][]string{
			domain.IntentViewCart:  {"voir panier", "voir mon panier", "montre mon panier", "afficher panier", "afficher mon panier"},
			domain.IntentClearCart: {"vider panier", "vider mon panier", "vide mon panier", "vider le panier"},
		},
		NumberWords: map[string]int{
			"un": 1, "une": 1, "deux": 2, "trois": 3, "quatre": 4, "cinq": 5,
			"six": 6, "sept": 7, "huit": 8, "neuf": 9, "dix": 10, "douze": 12,
			"douzaine": 12,
		},
		Fillers: []string{
			"de", "du", "des", "d", "le", "la", "les", "l", "mon", "ma", "mes", "au", "aux",
			"dans", "a", "s", "il", "vous", "plait", "panier", "paquet", "paquets",
			"bouteille", "bouteilles", "sac", "kilo", "kilos", "litre", "litres", "et",
		},
		Corrections: map[string]string{
			"pannier": "panier",
		},
	}
}

func hindi() Language {
	return Language{
		Code: "hi",
		Keywords: map[domain.Intent][]string{
			domain.IntentAdd:    {"daalo", "dalo", "jodo", "kharido", "chahiye"},
			domain.IntentRemove: {"hatao", "nikalo", "hata do"},
			domain.IntentSearch: {"dhundo", "dikhao", "khojo", "batao"},
		},
		CartPhrases: map[domain.Intent][]string{
			domain.IntentViewCart:  {"cart dikhao", "mera cart dikhao", "cart dekho"},
			domain.IntentClearCart: {"cart khali karo", "cart saaf karo"},
		},
		NumberWords: map[string]int{
			"ek": 1, "do": 2, "teen": 3, "char": 4, "paanch": 5,
			"chhe": 6, "saat": 7, "aath": 8, "nau": 9, "das": 10, "darjan": 12,
		},
		Fillers: []string{
			"mein", "me", "ki", "ka", "ke", "se", "mera", "meri", "mere", "cart",
			"packet", "packets", "kilo", "litre", "karo", "kar", "aur", "please",
		},
		Corrections: map[string]string{
			"dudh": "doodh", "kart": "cart",
		},
	}
}
