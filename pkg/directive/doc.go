// Package directive implements the attribute rewrite engine. Templates carry
// declarative attributes such as
//
//	<input type="text" fg:property="item.quantity">
//	<select fg:property="status"><option fg:optionCls="MemberStatus"></option></select>
//	<ul><li fg:errors="name"></li></ul>
//	<input type="hidden" fg:token="true">
//
// and the Dispatcher expands each of them into host directives (tpl:name,
// tpl:value, tpl:each, ...) which the host engine evaluates as if the author
// had written them. Field names are resolved against the iteration frames of
// the enclosing tpl:each elements, so the input above renders as
// name="items[2].quantity" on the third item.
//
// Generated expressions use the pongo2 expression syntax.
package directive
