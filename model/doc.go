/*
Package model defines the system topology snapshots produced and consumed by
an analysis, as well as the analysis configuration.

A [System] consists of container definitions and a topology of nodes
instantiated from these definitions. Nodes form a containment tree below a
single root machine node of type [BlankContainer], which contains itself. The
topology keeps its nodes in declaration order, as the root machine node is the
first node of type [BlankContainer] in this order.
*/
package model
