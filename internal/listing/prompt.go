package listing

import "fmt"

const systemInstruction = `You are a real estate data aggregator.
Your goal is to structure unstructured search results into a unified format.
- Identify the Source Platform (e.g., Haraj, Aqar) based on the URL.
- Normalize prices to numbers.
- Extract images if available in the snippet metadata.
- Do not hallucinate data. If a field is missing, leave it null.`

// Prompt is everything a Searcher needs for one provider call.
type Prompt struct {
	Mode              SearchMode
	Query             string
	Text              string
	SystemInstruction string
	// Terms is a keyword form of the request for providers that take plain
	// search terms instead of an instruction.
	Terms string
}

func BuildPrompt(query string, mode SearchMode) Prompt {
	p := Prompt{
		Mode:              mode,
		Query:             query,
		SystemInstruction: systemInstruction,
	}

	if mode.IsPhone() {
		p.Text = fmt.Sprintf(`Search specifically across Saudi real estate platforms (Haraj, Aqar, Bayut, Wasalt, OpenSooq) for listings associated with phone number: "%s".

Instructions:
1. Aggressively extract the "Owner Name" and "Phone Number" found in the text.
2. Ignore results that do not strictly match the phone number.`, mode.TargetPhone)
		p.Terms = fmt.Sprintf(`"%s" عقار`, mode.TargetPhone)
		return p
	}

	p.Text = fmt.Sprintf(`Act as a meta-search engine for Saudi real estate. Search across Haraj.com.sa, Aqar.fm, Bayut.sa, Wasalt.com and OpenSooq.
Query: "%s".

Requirements:
1. Consolidate listings from different sources.
2. Extract "Owner Name", "Phone", "Location", "Price" and "Images".
3. For Aqar.fm and Haraj.com.sa, be extremely precise with location and price.`, query)
	p.Terms = query
	return p
}
