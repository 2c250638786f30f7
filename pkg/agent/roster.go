package agent

// Canonical agent names used across the pipeline.
const (
	LiteratureReview   = "Literature Review Agent"
	TRIZIdeation       = "TRIZ Ideation Agent"
	SciResearch1       = "Scientific Research Agent 1"
	SciResearch2       = "Scientific Research Agent 2"
	CrossIndustry      = "Cross-Industry Translation Agent"
	IntegratedSolution = "Integrated Solutions Agent"
	BlackHatThinker    = "Black Hat Thinker Agent"
	SelfCritique       = "Self Critique Agent"
	ProductIdeation    = "Product Ideation Agent"
	ProposalWriter     = "Proposal Writer Agent"
	TRLAssessment      = "TRL Assessment"
)

// Builtin returns the default roster. Deployment names are overridable
// through settings; prompts and schemas are fixed.
func Builtin() []Definition {
	return []Definition{
		{
			Name:       TRIZIdeation,
			Deployment: "ccm-ric-o3",
			Prompt: "You are a seasoned TRIZ specialist. Conduct a thorough contradiction " +
				"analysis by identifying technical and physical contradictions, cite the top " +
				"5-10 TRIZ principles by number and name, and propose solutions using " +
				"structured headings and bullets.",
			Schema: SchemaTRIZ,
		},
		{
			Name:       SciResearch1,
			Deployment: "ccm-ric-gpt-4.5-preview",
			Prompt: "You are a visionary materials scientist specializing in polymers. " +
				"Generate 5 radical, scientifically-grounded concepts with clear novelty " +
				"reasoning, applications, and credible sources.",
			Schema: SchemaSciResearch1,
		},
		{
			Name:       SciResearch2,
			Deployment: "ccm-ric-o3",
			Prompt: "You are an expert in physics, chemistry, thermodynamics, mechanics, " +
				"and manufacturability. For each concept, evaluate feasibility, provide " +
				"qualitative reasoning, cost estimate, TRL with justification. Ground the " +
				"TRL reasoning in real research and cite 2-3 credible sources (journals, " +
				"patents, or industry reports). Mention these sources in the trl_reasoning " +
				"and list them in a trl_citations array.\n" +
				"Add two narrative fields for every concept you output:\n" +
				"description: one short paragraph (about 60 words) that explains the concept.\n" +
				"novelty_reasoning: what makes it new or better, 1-2 sentences.",
			Schema: SchemaSciResearch2,
		},
		{
			Name:       CrossIndustry,
			Deployment: "ccm-ric-o3",
			Prompt: "You are a cross-industry innovation scout. Generate 10-15 novel solution " +
				"concepts. Find analogous problems in other fields, summarise the original " +
				"solution and industry, then adapt that solution for roofing and " +
				"building-envelope applications. List adaptation challenges and provide " +
				"source URLs. Use insights from Scientific Research Agent 2 when helpful.",
			Schema: SchemaCrossIndustry,
		},
		{
			Name:       IntegratedSolution,
			Deployment: "ccm-ric-o3",
			Prompt: "You are a systems integrator. Develop a multi-layer insulation " +
				"blueprint: layer details, control strategies, metrics, and sources.",
			Schema: SchemaIntegratedSolutions,
		},
		{
			Name:       ProductIdeation,
			Deployment: "gpt-4.1",
			Prompt: "You are a product development specialist with direct access to our " +
				"internal product datasheets. Using ONLY components and product names found " +
				"in those datasheets, apply the SCAMPER framework to generate new product " +
				"concepts. For each idea, list the SCAMPER actions and the exact components " +
				"or product names referenced, and include a brief novelty note. Do not " +
				"introduce materials or technologies that are not present in the datasheets. " +
				"For each solution, after describing it, include a references array listing " +
				"the relevant datasheet titles and their datasheetUrl from the retrieval " +
				"results.",
			Schema: SchemaProductIdeation,
		},
		{
			Name:       BlackHatThinker,
			Deployment: "ccm-ric-o3",
			Prompt: "You are the devil's advocate performing FMEA. List failure modes, rank " +
				"severity, probability, detectability, and recommend mitigations.",
			Schema: SchemaBlackHat,
		},
		{
			Name:       SelfCritique,
			Deployment: "ccm-ric-o3",
			Prompt: "You are the internal reviewer. Identify vagueness or unsupported " +
				"claims, clarify assumptions, and suggest refinements.",
			Schema: SchemaSelfCritique,
		},
		{
			Name:       LiteratureReview,
			Deployment: "ccm-ric-o3",
			Prompt: "You are a scientific research librarian. Return one JSON object with a " +
				"citations array. Each element may be either a brief string or a detailed " +
				"object containing title, journal, year, and PMID/Patent#.",
			Schema: SchemaLiteratureReview,
		},
		{
			Name:       ProposalWriter,
			Deployment: "ccm-ric-o3",
			Prompt: "You are a technical proposal writer. Produce a complete proposal draft " +
				"covering every required section of the schema.",
			Schema: SchemaProposalWriter,
		},
		{
			Name:       TRLAssessment,
			Deployment: "ccm-ric-o3",
			Prompt: "You determine the Technology Readiness Level of a concept based on the " +
				"provided rubric and evidence.",
			Schema: SchemaTRLAssessment,
		},
	}
}
