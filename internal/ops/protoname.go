package ops

// protocolNames maps an IPv4 protocol field value to a short
// human-readable name, for Debug log lines only. Grounded on
// original_source/src/str_proto.c's str_ipproto table; trimmed to the
// protocols an operator running this annotator is actually likely to
// see.
var protocolNames = map[uint8]string{
	1:   "ICMP",
	2:   "IGMP",
	4:   "IPIP",
	6:   "TCP",
	9:   "IGP",
	17:  "UDP",
	22:  "IDP",
	41:  "IPv6",
	43:  "IPv6-Route",
	44:  "IPv6-Frag",
	47:  "GRE",
	50:  "ESP",
	51:  "AH",
	58:  "IPv6-ICMP",
	59:  "IPv6-NoNxt",
	60:  "IPv6-Opts",
	103: "PIM",
	108: "IPComp",
	112: "VRRP",
	132: "SCTP",
	135: "MH",
	136: "UDPLite",
	137: "MPLS-in-IP",
}

// ProtocolName returns a short name for an IPv4 protocol field value,
// or "UNKNOWN PROTOCOL" if this annotator has no name for it.
func ProtocolName(protocol uint8) string {
	if name, ok := protocolNames[protocol]; ok {
		return name
	}
	return "UNKNOWN PROTOCOL"
}
