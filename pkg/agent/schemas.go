package agent

// JSON schemas each agent's reply must validate against. Every ideation
// schema wraps its items in a top-level "solutions" array so that the
// orchestrator can unwrap replies uniformly.

const SchemaTRIZ = `{
  "type": "object",
  "required": ["contradictions", "principles", "solutions"],
  "properties": {
    "contradictions": {
      "type": "object",
      "required": ["technical", "physical"],
      "properties": {
        "technical": {
          "type": "array",
          "items": {
            "type": "object",
            "required": ["improving_parameter", "worsening_parameter", "description"],
            "properties": {
              "improving_parameter": {"type": "string"},
              "worsening_parameter": {"type": "string"},
              "description": {"type": "string"}
            }
          }
        },
        "physical": {
          "type": "array",
          "items": {
            "type": "object",
            "required": ["parameter_1", "state_1", "parameter_2", "state_2", "description"],
            "properties": {
              "parameter_1": {"type": "string"},
              "state_1": {"type": "string"},
              "parameter_2": {"type": "string"},
              "state_2": {"type": "string"},
              "description": {"type": "string"}
            }
          }
        }
      }
    },
    "principles": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["number", "name"],
        "properties": {
          "number": {"type": "integer"},
          "name": {"type": "string"}
        }
      }
    },
    "solutions": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["title", "description", "triz_principles_applied", "advantages", "challenges"],
        "properties": {
          "title": {"type": "string"},
          "description": {"oneOf": [{"type": "string"}, {"type": "array", "items": {"type": "string"}}]},
          "triz_principles_applied": {"type": "array", "items": {"type": "integer"}},
          "advantages": {"type": "array", "items": {"type": "string"}},
          "challenges": {"type": "array", "items": {"type": "string"}}
        }
      }
    }
  }
}`

const SchemaSciResearch1 = `{
  "type": "object",
  "required": ["solutions"],
  "properties": {
    "solutions": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["title", "description", "novelty_reasoning", "applications", "sources"],
        "properties": {
          "title": {"type": "string"},
          "description": {"type": "string"},
          "novelty_reasoning": {"type": "string"},
          "applications": {"type": "array", "items": {"type": "string"}},
          "sources": {"type": "array", "items": {"type": "string"}}
        }
      }
    }
  }
}`

const SchemaSciResearch2 = `{
  "type": "object",
  "required": ["solutions"],
  "properties": {
    "solutions": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["title", "feasibility_reasoning", "cost_estimate", "trl", "trl_reasoning"],
        "properties": {
          "title": {"type": "string"},
          "feasibility_reasoning": {"type": "string"},
          "cost_estimate": {"type": "string"},
          "trl": {"type": "integer"},
          "trl_reasoning": {"type": "string"},
          "description": {"type": "string"},
          "novelty_reasoning": {"type": "string"},
          "trl_citations": {"type": "array", "items": {"type": "string"}}
        }
      }
    }
  }
}`

const SchemaProductIdeation = `{
  "type": "object",
  "required": ["solutions"],
  "additionalProperties": false,
  "properties": {
    "solutions": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["title", "description", "scamper_steps", "components"],
        "additionalProperties": false,
        "properties": {
          "title": {"type": "string"},
          "description": {"type": "string"},
          "scamper_steps": {"type": "array", "items": {"type": "string"}},
          "components": {"type": "array", "items": {"type": "string"}},
          "novelty_reasoning": {"type": "string"},
          "references": {
            "type": "array",
            "items": {
              "type": "object",
              "required": ["url"],
              "additionalProperties": false,
              "properties": {
                "title": {"type": "string"},
                "url": {"type": "string", "format": "uri"}
              }
            }
          }
        }
      }
    }
  }
}`

const SchemaCrossIndustry = `{
  "type": "object",
  "required": ["solutions"],
  "properties": {
    "solutions": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["title", "source_industry", "source_problem", "original_solution", "adaptation", "challenges", "source_links"],
        "properties": {
          "title": {"type": "string"},
          "source_industry": {"type": "string"},
          "source_problem": {"type": "string"},
          "original_solution": {"type": "string"},
          "adaptation": {"type": "string"},
          "challenges": {"type": "array", "items": {"type": "string"}},
          "source_links": {"type": "array", "items": {"type": "string"}}
        }
      }
    }
  }
}`

const SchemaIntegratedSolutions = `{
  "type": "object",
  "required": ["control_strategies", "metrics", "sources", "solutions"],
  "properties": {
    "control_strategies": {"type": "string"},
    "metrics": {"type": "array", "items": {"type": "string"}},
    "sources": {"type": "array", "items": {"type": "string"}},
    "solutions": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["title", "function", "integration_notes"],
        "properties": {
          "title": {"type": "string"},
          "function": {"type": "string"},
          "integration_notes": {"type": "string"}
        }
      }
    }
  }
}`

const SchemaBlackHat = `{
  "type": "object",
  "required": ["solutions"],
  "properties": {
    "solutions": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["title", "severity", "probability", "detectability", "mitigation", "risk_notes"],
        "properties": {
          "title": {"type": "string"},
          "severity": {"type": "integer"},
          "probability": {"type": "integer"},
          "detectability": {"type": "integer"},
          "mitigation": {"type": "string"},
          "risk_notes": {"type": "string"}
        }
      }
    }
  }
}`

const SchemaSelfCritique = `{
  "type": "object",
  "required": ["solutions"],
  "additionalProperties": false,
  "properties": {
    "solutions": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["title", "comment"],
        "properties": {
          "title": {"type": "string"},
          "comment": {"type": "string"}
        }
      }
    }
  }
}`

const SchemaLiteratureReview = `{
  "type": "object",
  "required": ["citations"],
  "properties": {
    "citations": {
      "type": "array",
      "items": {
        "oneOf": [
          {"type": "string"},
          {
            "type": "object",
            "required": ["title", "journal", "year"],
            "additionalProperties": false,
            "properties": {
              "title": {"type": "string"},
              "journal": {"type": "string"},
              "year": {"type": ["integer", "string"]},
              "PMID": {"type": "string"},
              "Patent#": {"type": "string"},
              "PMID/Patent#": {"type": "string"}
            }
          }
        ]
      }
    }
  }
}`

const SchemaTRLAssessment = `{
  "type": "object",
  "required": ["trl", "justification", "citations"],
  "properties": {
    "trl": {"type": "string"},
    "justification": {"type": "string"},
    "citations": {"type": "array", "items": {"type": "integer"}}
  }
}`

// SchemaProposalWriter covers the full proposal draft: sixteen required
// sections, several of them structured objects.
const SchemaProposalWriter = `{
  "type": "object",
  "required": [
    "title", "executive_summary", "problem_statement", "concept_overview",
    "technical_details", "performance_targets", "manufacturing_process",
    "cost_feasibility", "risks_mitigations", "sustainability",
    "applications", "experimental_design", "validation_plan", "kpi_table",
    "ip_landscape", "references"
  ],
  "properties": {
    "title": {"type": "string"},
    "executive_summary": {"type": "string"},
    "problem_statement": {"type": "string"},
    "concept_overview": {"type": "string"},
    "technical_details": {
      "type": "object",
      "required": ["materials", "structure"],
      "properties": {
        "materials": {"type": "array", "items": {"type": "string"}},
        "structure": {"type": "string"},
        "formulation": {"type": "array", "items": {"type": "string"}},
        "design_rules": {"type": "array", "items": {"type": "string"}}
      }
    },
    "performance_targets": {"type": "object", "additionalProperties": {"type": "string"}},
    "manufacturing_process": {
      "type": "object",
      "required": ["route"],
      "properties": {
        "route": {"type": "string"},
        "critical_params": {"type": "object", "additionalProperties": {"type": "string"}},
        "scale_readiness": {"type": "string"}
      }
    },
    "cost_feasibility": {
      "type": "object",
      "required": ["trl"],
      "properties": {
        "cost_breakdown": {"type": "string"},
        "capex_estimate": {"type": "string"},
        "trl": {"type": "integer", "minimum": 1, "maximum": 9},
        "trl_rationale": {"type": "string"}
      }
    },
    "risks_mitigations": {"type": "array", "items": {"type": "string"}},
    "sustainability": {"type": "string"},
    "applications": {"type": "array", "items": {"type": "string"}},
    "experimental_design": {"type": "array", "items": {"type": "string"}},
    "validation_plan": {
      "type": "object",
      "properties": {
        "mechanical": {"type": "array", "items": {"type": "string"}},
        "thermal": {"type": "array", "items": {"type": "string"}},
        "chemical": {"type": "array", "items": {"type": "string"}},
        "environmental": {"type": "array", "items": {"type": "string"}}
      }
    },
    "kpi_table": {"type": "object", "additionalProperties": {"type": "string"}},
    "ip_landscape": {"type": "string"},
    "references": {"type": "array", "items": {"type": "string"}}
  }
}`
