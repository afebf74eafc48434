package textproc

import (
	"testing"

	"github.com/antonkh/ontology-assistant/internal/core/domain"
)

func TestClassifyDefinition(t *testing.T) {
	c := NewClassifier()

	cls := c.Classify("what is a person?")
	if cls.Primary != domain.IntentDefinition {
		t.Fatalf("primary = %q, want definition", cls.Primary)
	}
	// One pattern match plus the "what" keyword.
	if cls.Confidence != 1.5 {
		t.Fatalf("confidence = %v, want 1.5", cls.Confidence)
	}
}

func TestClassifyListing(t *testing.T) {
	c := NewClassifier()

	cls := c.Classify("list all animals")
	if cls.Primary != domain.IntentListing {
		t.Fatalf("primary = %q, want listing", cls.Primary)
	}
	if cls.Scores[domain.IntentListing] != 2.0 {
		t.Fatalf("listing score = %v, want 2.0", cls.Scores[domain.IntentListing])
	}
}

func TestClassifyComparison(t *testing.T) {
	c := NewClassifier()

	cls := c.Classify("difference between Cat and Dog")
	if cls.Primary != domain.IntentComparison {
		t.Fatalf("primary = %q, want comparison", cls.Primary)
	}
}

func TestClassifyHierarchical(t *testing.T) {
	c := NewClassifier()

	cls := c.Classify("what are the subclasses of Animal?")
	if cls.Primary != domain.IntentHierarchical {
		t.Fatalf("primary = %q, want hierarchical", cls.Primary)
	}
}

func TestClassifyCount(t *testing.T) {
	c := NewClassifier()

	cls := c.Classify("how many classes are there?")
	if cls.Primary != domain.IntentCount {
		t.Fatalf("primary = %q, want count", cls.Primary)
	}
}

func TestClassifyNoSignalFallsBackToGeneral(t *testing.T) {
	c := NewClassifier()

	cls := c.Classify("to do and the")
	if cls.Primary != domain.IntentGeneral {
		t.Fatalf("primary = %q, want general", cls.Primary)
	}
	if cls.Confidence != 0 {
		t.Fatalf("confidence = %v, want 0", cls.Confidence)
	}
	if cls.Secondary != "" {
		t.Fatalf("secondary = %q, want empty", cls.Secondary)
	}
}

func TestClassifySecondaryIsDistinctAndNonZero(t *testing.T) {
	c := NewClassifier()

	// Definition and relationship tie at 1.5; the declared intent order
	// breaks the tie in favor of definition.
	cls := c.Classify("what is the relationship between Cat and Dog?")
	if cls.Primary != domain.IntentDefinition {
		t.Fatalf("primary = %q, want definition", cls.Primary)
	}
	if cls.Secondary != domain.IntentRelationship {
		t.Fatalf("secondary = %q, want relationship", cls.Secondary)
	}
	if cls.Scores[cls.Secondary] <= 0 {
		t.Fatalf("secondary score must be positive, got %v", cls.Scores[cls.Secondary])
	}
}

func TestClassifyIsCaseInsensitive(t *testing.T) {
	c := NewClassifier()

	upper := c.Classify("WHAT IS A PERSON?")
	lower := c.Classify("what is a person?")
	if upper.Primary != lower.Primary {
		t.Fatalf("case changed classification: %q vs %q", upper.Primary, lower.Primary)
	}
	if upper.Confidence != lower.Confidence {
		t.Fatalf("case changed confidence: %v vs %v", upper.Confidence, lower.Confidence)
	}
}
