package prompt

import (
	"fmt"
	"strings"

	"github.com/futig/explainer-backend/internal/entity"
)

type levelPrompt struct {
	description string
	system      string
	template    string
}

var levelPrompts = map[entity.ExplanationLevel]levelPrompt{
	entity.LevelChild: {
		description: "Child (5 years old) - Simple words and fun examples",
		system: `You are explaining to a 5 year old child. Use:
- very simple words (no big words)
- short sentences
- fun analogies from everyday life (toys, animals, cartoons)
- no technical terms
- an encouraging and positive tone
- "imagine if..." or "think about..." to start the explanation`,
		template: `Explain this topic like I am 5 years old: {topic}
Here is some information that might help: {context}
Remember to:
- use only simple words that a child would understand
- make it fun and interesting
- use examples from things a child knows (toys, animals, cartoons)
- ask simple questions to engage the child`,
	},
	entity.LevelTeenager: {
		description: "Teenager (15 years old) - Engaging and relatable",
		system: `You are explaining to a curious 15 year old teenager. Use:
- clear, engaging language they can understand
- examples from technology, social media, sports, movies
- some technical terms, explained simply
- relatable analogies from their world
- why it matters in their life`,
		template: `Explain this topic for a teenager: {topic}
Context information: {context}
Make it:
- interesting and relevant to teenage life
- clear but not oversimplified
- include why they should care about this
- use examples they can relate to
- connect to things they already know about`,
	},
	entity.LevelUndergraduate: {
		description: "University Student - Academic but accessible",
		system: `You are explaining to a university student. Use:
- academic but accessible language
- proper terminology with clear definitions
- structured explanations with key concepts
- examples from various fields of study
- connections to broader knowledge`,
		template: `Provide an undergraduate-level explanation of: {topic}
Context from source material: {context}
Include:
- key concepts and important terminology
- how this connects to other subjects
- real-world applications and examples
- a clear logical structure
- why this knowledge is important`,
	},
	entity.LevelGraduate: {
		description: "Graduate Student - Advanced and technical",
		system: `You are explaining to a graduate student. Use:
- advanced academic language
- technical precision and depth
- critical analysis and evaluation
- references to current research and methods
- a nuanced understanding of complexities`,
		template: `Provide a graduate-level analysis of: {topic}
Source context: {context}
Focus on:
- technical depth and precision
- current research and developments
- critical analysis and implications
- advanced methodologies and theories
- connections to cutting-edge work in the field`,
	},
	entity.LevelExpert: {
		description: "Expert - Highly technical and precise",
		system: `You are communicating with a domain expert. Use:
- highly technical and precise language
- advanced concepts without extensive explanation
- latest research findings and ongoing debates
- nuanced analysis and cutting-edge perspectives
- the assumption of deep background knowledge`,
		template: `Provide an expert-level analysis of: {topic}
Context material: {context}
Include:
- latest research developments and findings
- technical nuances and edge cases
- current debates and open questions
- advanced theoretical frameworks
- implications for future work`,
	},
}

// Build renders the complete generation prompt for a level.
func Build(level entity.ExplanationLevel, topic, context string) (string, error) {
	p, ok := levelPrompts[level]
	if !ok {
		return "", fmt.Errorf("%w: %q", entity.ErrInvalidLevel, level)
	}

	user := strings.NewReplacer("{topic}", topic, "{context}", context).Replace(p.template)

	return fmt.Sprintf("System instruction: %s\n\nUser request: %s\n\nProvide a detailed and accurate response based on the provided context.\n",
		p.system, user), nil
}

// Descriptions returns the human-readable description of every level.
func Descriptions() map[string]string {
	out := make(map[string]string, len(levelPrompts))
	for level, p := range levelPrompts {
		out[level.String()] = p.description
	}
	return out
}
