package algo

import (
	"container/heap"
	"fmt"
	"math"
	"slices"
	"strings"
)

// PathResult 最短路结果
type PathResult struct {
	Path     []int   `json:"path"`     // 节点下标序列
	Distance float64 `json:"distance"` // 总距离 (平面单位)
}

// PriorityQueueItem 优先队列中的元素
type PriorityQueueItem struct {
	Node  int
	Cost  float64
	Seq   int // 入队顺序，距离相同时按先入队者优先，保证结果可复现
	Index int // 在堆中的索引
}

// PriorityQueue 实现 heap.Interface 接口的优先队列
type PriorityQueue []*PriorityQueueItem

func (pq PriorityQueue) Len() int { return len(pq) }

func (pq PriorityQueue) Less(i, j int) bool {
	if pq[i].Cost != pq[j].Cost {
		return pq[i].Cost < pq[j].Cost
	}
	return pq[i].Seq < pq[j].Seq
}

func (pq PriorityQueue) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
	pq[i].Index = i
	pq[j].Index = j
}

func (pq *PriorityQueue) Push(x interface{}) {
	n := len(*pq)
	item := x.(*PriorityQueueItem)
	item.Index = n
	*pq = append(*pq, item)
}

func (pq *PriorityQueue) Pop() interface{} {
	old := *pq
	n := len(old)
	item := old[n-1]
	old[n-1] = nil  // 避免内存泄漏
	item.Index = -1 // 标记为已移除
	*pq = old[0 : n-1]
	return item
}

// ShortestPath 使用 Dijkstra 算法寻找最短路径
// 终点不可达时返回 nil，这是正常的"无路可走"结果而不是错误
// 起点或终点下标非法时同样返回 nil
func ShortestPath(g *Graph, start, end int) *PathResult {
	if g == nil || !g.Valid(start) || !g.Valid(end) {
		return nil
	}
	if start == end {
		return &PathResult{Path: []int{start}, Distance: 0}
	}

	n := len(g.Nodes)
	dist := make([]float64, n)
	prev := make([]int, n)
	visited := make([]bool, n)
	for i := range dist {
		dist[i] = math.Inf(1)
		prev[i] = -1
	}
	dist[start] = 0

	seq := 0
	pq := make(PriorityQueue, 0)
	heap.Init(&pq)
	heap.Push(&pq, &PriorityQueueItem{Node: start, Cost: 0, Seq: seq})

	// Dijkstra 主循环
	for pq.Len() > 0 {
		current := heap.Pop(&pq).(*PriorityQueueItem)
		u := current.Node

		// 如果已访问过，跳过
		if visited[u] {
			continue
		}
		visited[u] = true

		// 如果到达终点，提前退出
		if u == end {
			break
		}

		// 遍历邻居，按边插入顺序
		for _, nb := range g.AdjList[u] {
			if visited[nb.Node] {
				continue
			}
			newCost := dist[u] + nb.Weight
			if newCost < dist[nb.Node] {
				dist[nb.Node] = newCost
				prev[nb.Node] = u
				seq++
				heap.Push(&pq, &PriorityQueueItem{Node: nb.Node, Cost: newCost, Seq: seq})
			}
		}
	}

	// 如果没有找到路径
	if math.IsInf(dist[end], 1) {
		return nil
	}

	// 回溯路径
	path := []int{}
	for at := end; at != -1; at = prev[at] {
		path = append(path, at)
		if at == start {
			break
		}
	}
	slices.Reverse(path)

	return &PathResult{Path: path, Distance: dist[end]}
}

// FormatPath 格式化路径结果为可读字符串
func FormatPath(g *Graph, result *PathResult, metersPerDegree float64) string {
	if result == nil {
		return "未找到路径"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "总距离: %.2f 米\n", result.Distance*metersPerDegree)
	sb.WriteString("路径:\n")
	for i, idx := range result.Path {
		fmt.Fprintf(&sb, "%d. %v (#%d)\n", i+1, g.Nodes[idx].Coord, idx)
	}
	return sb.String()
}
