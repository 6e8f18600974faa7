package ast

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func sampleTree() []Node {
	key := JsExpr{Code: "item.id"}
	return []Node{
		&Element{
			TagName: "ul",
			Attributes: []Attribute{
				&StaticAttr{Name: "class", Value: "list"},
				&DynamicAttr{Name: "hidden", Expr: JsExpr{Code: "empty"}},
			},
			Children: []Node{
				&ControlFlow{Block: &ForBlock{
					Params: "item of items",
					Key:    &key,
					Body: []Node{&Element{
						TagName: "Row",
						Attributes: []Attribute{
							&EventHandlerAttr{Name: "onclick", Expr: JsExpr{Code: "pick(item)"}},
							&BindAttr{Property: "value", Expr: JsExpr{Code: "item.name"}},
						},
					}},
				}},
			},
		},
		&ControlFlow{Block: &IfBlock{
			Condition: JsExpr{Code: "a"},
			Then:      []Node{&Expr{JsExpr{Code: "one"}}},
			ElseIfs:   []ElseIf{{Condition: JsExpr{Code: "b"}, Branch: []Node{&Slot{Name: "footer"}}}},
			Else:      []Node{&Slot{Fallback: []Node{&Text{Value: "none"}, &Expr{JsExpr{Code: "two"}}}}},
			HasElse:   true,
		}},
	}
}

func TestExpressions_DocumentOrder(t *testing.T) {
	var got []string
	Expressions(sampleTree(), func(e JsExpr) { got = append(got, e.Code) })

	want := []string{"empty", "item.id", "pick(item)", "item.name", "a", "b", "one", "two"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Expressions mismatch (-want +got):\n%s", diff)
	}
}

func TestInspect_SkipsChildrenWhenFalse(t *testing.T) {
	var tags []string
	Inspect(sampleTree(), func(n Node) bool {
		if el, ok := n.(*Element); ok {
			tags = append(tags, el.TagName)
			return false
		}
		return true
	})

	if diff := cmp.Diff([]string{"ul"}, tags); diff != "" {
		t.Errorf("Inspect visited (-want +got):\n%s", diff)
	}
}

func TestSlotNames_Deduplicated(t *testing.T) {
	nodes := append(sampleTree(), &Slot{Name: "footer"}, &Slot{})

	if diff := cmp.Diff([]string{"footer", "children"}, SlotNames(nodes)); diff != "" {
		t.Errorf("SlotNames mismatch (-want +got):\n%s", diff)
	}
}

func TestIsComponentTag(t *testing.T) {
	for tag, want := range map[string]bool{"Card": true, "card": false, "my-el": false, "": false, "X": true} {
		if got := IsComponentTag(tag); got != want {
			t.Errorf("IsComponentTag(%q) = %v, expected %v", tag, got, want)
		}
	}
}
