package provider

var ClassifySubmitReply = classifySubmitReply
