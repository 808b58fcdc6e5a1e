package constant

const (
	// UiCompressionSystemPrompt turns raw DOM element records into a compact
	// map the test generator can reason over.
	UiCompressionSystemPrompt = `You compress raw DOM element records into a concise, stable UI map for automated test planning. Preserve semantics: roles, names, inputs, buttons, links, key actions. Keep selectors human-understandable (prefer id, name, text, or short CSS). Output strict JSON with fields: pages, components, actions. Do not include <think> in output.`

	UiCompressionUserPromptPrefix = `Given these UI elements (array of records) produce a compressed JSON describing actionable UI for testing. Limit to most relevant items, group similar. Elements: `

	TestCaseSystemPrompt = `Generate end-to-end UI test cases in clear, executable, human-readable steps. Use Gherkin-like style (Given/When/Then) but keep steps atomic and deterministic. Cover:
- happy paths for main flows
- field validations and error states
- negative cases (permissions, invalid input)
- navigation and links
- accessibility basics (focus, keyboard)
Represent each test as JSON: { title, priority, tags, preconditions, steps: [{index, action, selector, details, expected}], postconditions }. Use selectors from uiMap. Do not include <think>.`

	// UiPromptPayloadLimit caps serialized element and map payloads so a huge
	// page cannot blow the provider's context window.
	UiPromptPayloadLimit = 100_000

	TestCaseDefaultPriority = "P2"
)
