package ast

// Inspect walks nodes depth-first in document order. fn is called for each
// node; returning false skips that node's children. Element children, every
// control-flow branch and slot fallbacks are visited.
func Inspect(nodes []Node, fn func(Node) bool) {
	for _, n := range nodes {
		if !fn(n) {
			continue
		}
		for _, children := range Children(n) {
			Inspect(children, fn)
		}
	}
}

// Children returns the nested node sequences of n in document order.
func Children(n Node) [][]Node {
	switch n := n.(type) {
	case *Element:
		return [][]Node{n.Children}
	case *Text, *Expr:
		return nil
	case *Slot:
		return [][]Node{n.Fallback}
	case *ControlFlow:
		switch b := n.Block.(type) {
		case *IfBlock:
			out := [][]Node{b.Then}
			for _, ei := range b.ElseIfs {
				out = append(out, ei.Branch)
			}
			if b.HasElse {
				out = append(out, b.Else)
			}
			return out
		case *ForBlock:
			return [][]Node{b.Body}
		default:
			panic(unexpected(b))
		}
	default:
		panic(unexpected(n))
	}
}

// Expressions calls fn for every embedded expression in nodes: interpolations,
// dynamic/event/bind attribute values, if conditions and for keys.
func Expressions(nodes []Node, fn func(JsExpr)) {
	Inspect(nodes, func(n Node) bool {
		switch n := n.(type) {
		case *Expr:
			fn(n.JsExpr)
		case *Element:
			for _, a := range n.Attributes {
				switch a := a.(type) {
				case *StaticAttr:
				case *DynamicAttr:
					fn(a.Expr)
				case *EventHandlerAttr:
					fn(a.Expr)
				case *BindAttr:
					fn(a.Expr)
				default:
					panic(unexpected(a))
				}
			}
		case *ControlFlow:
			switch b := n.Block.(type) {
			case *IfBlock:
				fn(b.Condition)
				for _, ei := range b.ElseIfs {
					fn(ei.Condition)
				}
			case *ForBlock:
				if b.Key != nil {
					fn(*b.Key)
				}
			default:
				panic(unexpected(b))
			}
		case *Text, *Slot:
		default:
			panic(unexpected(n))
		}
		return true
	})
}

// SlotNames returns the effective names of all slots in nodes, deduplicated,
// in first-occurrence order.
func SlotNames(nodes []Node) []string {
	var names []string
	seen := make(map[string]bool)
	Inspect(nodes, func(n Node) bool {
		if s, ok := n.(*Slot); ok {
			name := s.EffectiveName()
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
		return true
	})
	return names
}
