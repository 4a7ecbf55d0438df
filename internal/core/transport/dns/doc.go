// Package dns 在基础传输之上解析符号主机名
//
// /dns, /dns4, /dns6 地址被解析为一个或多个具体端点，依次拨号直到成功；
// IP 地址转换为 host:port；已解析的端点（包括 onion 路由结果）原样透传。
// 解析失败返回 *types.ResolutionError，不在内部重试。
package dns
