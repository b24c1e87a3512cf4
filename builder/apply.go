package builder

import (
	"log/slog"
	"reflect"
)

// resolve yields the value of a value node, invoking its producer at most
// once per build generation. A producer reading its own path gets
// ErrProducerCycle.
func (t *tree) resolve(idx int) (reflect.Value, error) {
	n := &t.nodes[idx]
	if n.resolvedGen == t.gen {
		return n.resolved, nil
	}
	if n.resolving {
		return reflect.Value{}, ProducerError{Path: t.path(idx), Cause: ErrProducerCycle}
	}
	n.resolving = true
	defer func() { t.nodes[idx].resolving = false }()

	var (
		raw any
		out reflect.Value
	)
	switch n.producer {
	case literalProducer:
		out = n.literal
	case funcProducer:
		raw = n.fn()
	case builderFuncProducer:
		v, err := n.builderFn()
		if err != nil {
			return reflect.Value{}, ProducerError{Path: t.path(idx), Cause: err}
		}
		raw = v
	}

	// producers may configure other paths, which can grow the arena
	n = &t.nodes[idx]
	if n.producer != literalProducer {
		rv := reflect.ValueOf(raw)
		converted, ok := convertValue(rv, n.typ)
		if !ok {
			return reflect.Value{}, TypeMismatchError{Path: t.path(idx), Want: n.typ, Got: typeOfValue(rv)}
		}
		out = converted
	}

	n.resolved = out
	n.resolvedGen = t.gen
	return out, nil
}

// applyToInstance pushes every pending value below idx into target, which
// must be a settable value of the node's type. Values read by the
// constructor are skipped when skipUsed is set.
func (t *tree) applyToInstance(idx int, target reflect.Value, skipUsed bool) error {
	container := prepare(target)

	for _, c := range t.sortedChildren(idx) {
		child := &t.nodes[c]

		if child.kind == valueNode {
			if skipUsed && child.usedByConstructor {
				t.log.Debug("value consumed by constructor", slog.String("path", t.path(c)))
				continue
			}
			v, err := t.resolve(c)
			if err != nil {
				return err
			}
			if !t.nodes[c].allowDefaults && v.IsZero() {
				t.log.Debug("skipping default value", slog.String("path", t.path(c)))
				continue
			}
			cell, commit := slot(container, &t.nodes[c])
			cell.Set(v)
			commit()
			continue
		}

		if skipUsed && t.consumed(c) {
			t.log.Debug("branch consumed by constructor", slog.String("path", t.path(c)))
			continue
		}
		cell, commit := slot(container, child)
		if err := t.applyToInstance(c, cell, skipUsed); err != nil {
			return err
		}
		commit()
	}
	return nil
}

// applyToConstructor synthesises the value a node stands for so it can be
// handed to a constructor function. Everything read is marked as used when
// mark is set.
func (t *tree) applyToConstructor(idx int, mark bool) (reflect.Value, error) {
	n := &t.nodes[idx]
	if n.kind == valueNode {
		v, err := t.resolve(idx)
		if err != nil {
			return reflect.Value{}, err
		}
		if mark {
			t.nodes[idx].usedByConstructor = true
		}
		return v, nil
	}

	instance := reflect.New(n.typ).Elem()
	if err := t.applyToInstance(idx, instance, false); err != nil {
		return reflect.Value{}, err
	}
	if mark {
		t.markSubtree(idx)
	}
	return instance, nil
}

// prepare dereferences pointers, allocating nil ones, and makes nil maps so
// that target can receive children.
func prepare(target reflect.Value) reflect.Value {
	for target.Kind() == reflect.Pointer {
		if target.IsNil() {
			target.Set(reflect.New(target.Type().Elem()))
		}
		target = target.Elem()
	}
	if target.Kind() == reflect.Map && target.IsNil() {
		target.Set(reflect.MakeMap(target.Type()))
	}
	return target
}

// slot returns a settable cell for n inside container and a commit function
// that must be called after the cell was written. Map elements are not
// addressable, so their cell is a copy written back on commit.
func slot(container reflect.Value, n *node) (reflect.Value, func()) {
	noop := func() {}

	if n.seg.Kind == MemberSegment {
		return fieldByIndex(container, n.fieldIndex), noop
	}

	switch container.Kind() {
	case reflect.Slice:
		i := int(n.seg.Args[0].(int64))
		if i >= container.Len() {
			grow := reflect.MakeSlice(container.Type(), i+1-container.Len(), i+1-container.Len())
			container.Set(reflect.AppendSlice(container, grow))
		}
		return container.Index(i), noop

	case reflect.Array:
		return container.Index(int(n.seg.Args[0].(int64))), noop
	}

	// map; the key was validated when the node was created
	key, _ := convertValue(reflect.ValueOf(n.seg.Args[0]), container.Type().Key())
	cell := reflect.New(container.Type().Elem()).Elem()
	if existing := container.MapIndex(key); existing.IsValid() {
		cell.Set(existing)
	}
	return cell, func() { container.SetMapIndex(key, cell) }
}

// fieldByIndex is reflect.Value.FieldByIndex that allocates nil embedded
// pointers on the way.
func fieldByIndex(v reflect.Value, index []int) reflect.Value {
	for i, x := range index {
		if i > 0 {
			v = prepare(v)
		}
		v = v.Field(x)
	}
	return v
}

