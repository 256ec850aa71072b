// Package classification provides enumeration-like value sets ("classifications")
// to templates. A classification is an ordered list of members identified by a
// code, optionally tagged with groups, and carrying locale-specific alias
// sub-items.
//
// Definitions are loaded from JSON or YAML files:
//
//	aliasKeys:
//	  ja: aliasJa
//	classifications:
//	  MemberStatus:
//	    members:
//	      - code: FML
//	        name: Formalized
//	        alias: Formal
//	        groups: [serviceAvailable]
//	        subItems:
//	          aliasJa: 正式会員
//
// Templates reach a Provider through the Functions helper, which is exported
// into every render under the reserved name "cls".
package classification
