package filter

// Keyword inventories for the built-in filter categories. Single-word
// entries are matched against whole tokens; entries containing a space are
// matched as substrings of the normalized text.

var religiousHighPrecisionKeywords = []string{
	// Spanish
	"iglesia", "pastor", "predicador", "sermon", "biblia", "evangelio",
	"cristiano", "catolico", "protestante", "pentecostal", "bautista",
	"metodista", "adventista", "jehova", "mormon", "ministerio",
	"apostol", "profeta", "sacerdote", "obispo", "vaticano", "templo",
	"catedral", "capilla", "santuario", "crucifijo", "rosario", "oracion",
	"bendicion", "milagro", "virgen", "cristo", "dios", "trinidad",
	"salvacion", "aleluya", "hosanna", "diocesano", "parroquia", "misa",
	"eucaristia", "bautismo", "novena", "resurreccion", "pentecostes",
	"cuaresma", "adviento",

	// English
	"church", "preacher", "bible", "gospel", "christian", "catholic",
	"protestant", "baptist", "methodist", "adventist", "jehovah",
	"ministry", "apostle", "prophet", "priest", "bishop", "vatican",
	"cathedral", "chapel", "sanctuary", "crucifix", "rosary", "prayer",
	"blessing", "miracle", "christ", "trinity", "salvation",
	"hallelujah", "diocese", "parish", "eucharist", "communion",
	"baptism", "resurrection",

	// Known religious broadcasters
	"3abn", "ewtn", "tbn", "enlace", "hope channel", "novo tempo",
	"nuevo tiempo", "cancao nova", "terceiro anjo", "sat 7",
	"canal luz", "canal diocesano", "bethel", "iurd",

	// Islamic
	"islam", "muslim", "quran", "allah", "mosque", "imam", "ramadan",
	"mecca", "islamic", "islamico", "mezquita", "coran",

	// Jewish
	"jewish", "judaism", "torah", "synagogue", "rabbi", "kosher",
	"shabbat", "sinagoga", "rabino",

	// Hindu and Buddhist
	"hindu", "hinduism", "buddha", "buddhism", "dharma", "mantra",
	"monastery", "budismo", "monasterio",
}

// religiousContextKeywords only count when a high-precision keyword or a
// blocked domain term is also present; on their own they are far too common
// in ordinary channel names ("Canal Fe y Alegria" vs "Cafe TV").
var religiousContextKeywords = []string{
	"fe", "esperanza", "amor", "paz", "vida", "luz", "camino",
	"faith", "hope", "love", "peace", "light", "angel", "anjo",
	"cielo", "heaven", "eternal", "eterno", "divine", "divino",
	"sacred", "sagrado", "holy", "santo", "santa", "saint",
}

// religiousDomainTerms are matched against the host of the stream URL.
var religiousDomainTerms = []string{
	"iglesia", "church", "gospel", "christian", "catolico", "catholic",
	"evangelico", "evangelical", "pentecostal", "bautista", "baptist",
	"adventista", "adventist", "jehovah", "ministerio", "ministry",
	"templo", "temple", "biblia", "bible", "cristo", "christ",
	"diocesis", "diocese", "parroquia", "parish", "vaticano", "vatican",
	"ewtn", "tbn", "3abn", "enlace", "hopechannel", "novotempo",
	"nuevotiempo", "cancaonova", "terceiroanjo", "sat7", "canalluz",
	"bethel", "iurd", "islamic", "islamico", "muslim", "mezquita",
	"mosque", "jewish", "synagogue", "sinagoga", "torah", "hindu",
	"buddhism", "monastery",
}

var politicalKeywords = []string{
	// Legislative institutions
	"congreso", "congress", "parliament", "parlamento", "diputados",
	"senado", "senate", "asamblea", "assembly", "legislativo",
	"legislative",

	// Government institutions
	"gobierno", "government", "presidencia", "presidency", "municipal",
	"ayuntamiento", "alcaldia", "gubernamental",

	// Generic political markers
	"politico", "political", "politica", "politics", "institucional",
	"institutional",
}

// blockedDomainTerms flag stream hosts by TLD or by well-known broadcaster
// substrings. TLD entries keep their leading dot and match as suffixes.
var blockedDomainTerms = []string{
	".ru", ".by",
	"russia", "moscow", "kremlin", "rtvi", "sputnik", "vesti",

	".ae", ".sa", ".qa", ".kw", ".bh", ".om",
	".eg", ".ly", ".tn", ".ma", ".dz",
	".sy", ".lb", ".jo", ".iq", ".ye",
	".ir", ".af", ".pk",
	"aljazeera", "alarabiya",

	"tv360.bitel",
}

// blockedProviderTerms flag whole distribution platforms whose streams are
// region-locked or rotate endpoints. Matched against the channel name and
// the full stream URL, since Pluto playlists carry the platform both ways.
var blockedProviderTerms = []string{
	"pluto tv",
	"pluto.tv",
	"plutotv",
	"service-stitcher.clusters.pluto.tv",
	"cfd-v4-service-channel-stitcher-use1-1.prd.pluto.tv",
}
